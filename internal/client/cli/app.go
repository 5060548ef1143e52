// Package cli implements a small interactive client for the identity
// service: sign-up, sign-in, and token refresh over HTTP. Passwords are read
// without echo.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matoscout/api/internal/client/config"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type App struct {
	baseURL string
	client  *http.Client
	in      *bufio.Reader
	out     io.Writer

	tokens tokenPair
}

func NewApp(cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) Run(ctx context.Context) error {
	for {
		fmt.Fprint(a.out, "\ncommands: sign-up, sign-in, refresh, quit\n> ")

		line, err := a.in.ReadString('\n')
		if err != nil {
			return nil
		}

		switch strings.TrimSpace(line) {
		case "sign-up":
			err = a.signUp(ctx)
		case "sign-in":
			err = a.signIn(ctx)
		case "refresh":
			err = a.refresh(ctx)
		case "quit", "q", "exit":
			return nil
		case "":
			continue
		default:
			fmt.Fprintln(a.out, "unknown command")
			continue
		}

		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

func (a *App) readCredentials() (string, string, error) {
	fmt.Fprint(a.out, "email: ")
	email, err := a.in.ReadString('\n')
	if err != nil {
		return "", "", err
	}

	fmt.Fprint(a.out, "password: ")
	pass, err := readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", "", err
	}

	return strings.TrimSpace(email), string(pass), nil
}

func (a *App) signUp(ctx context.Context) error {
	email, pass, err := a.readCredentials()
	if err != nil {
		return err
	}

	resp, err := a.post(ctx, "/auth/sign-up", map[string]string{"email": email, "password": pass})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return problemError(resp)
	}

	fmt.Fprintln(a.out, "registered")
	return nil
}

func (a *App) signIn(ctx context.Context) error {
	email, pass, err := a.readCredentials()
	if err != nil {
		return err
	}

	resp, err := a.post(ctx, "/auth/sign-in", map[string]string{"email": email, "password": pass})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return problemError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&a.tokens); err != nil {
		return fmt.Errorf("decoding token pair: %w", err)
	}

	fmt.Fprintf(a.out, "access token: %s\nrefresh token: %s\n", a.tokens.AccessToken, a.tokens.RefreshToken)
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	if a.tokens.RefreshToken == "" {
		return fmt.Errorf("no refresh token, sign in first")
	}

	resp, err := a.post(ctx, "/auth/tokens/refresh", map[string]string{"refresh_token": a.tokens.RefreshToken})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return problemError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&a.tokens); err != nil {
		return fmt.Errorf("decoding token pair: %w", err)
	}

	fmt.Fprintf(a.out, "access token: %s\nrefresh token: %s\n", a.tokens.AccessToken, a.tokens.RefreshToken)
	return nil
}

func (a *App) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return a.client.Do(req)
}

func problemError(resp *http.Response) error {
	var p problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil || p.Title == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return fmt.Errorf("%s %s", p.Title, p.Detail)
}
