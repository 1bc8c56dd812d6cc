// Command oauth-init bootstraps a Gmail connection without the
// dashboard: it runs the consent flow against a local redirect server
// and stores the client config and token straight into the settings
// table, so a headless deployment starts out already connected.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"kharcha/internal/cli"
	"kharcha/internal/config"
	"kharcha/internal/mail/gmail"
	"kharcha/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	// Load client credentials
	clientJSON := os.Getenv("GMAIL_OAUTH_CLIENT_JSON")
	clientFile := os.Getenv("GMAIL_OAUTH_CLIENT_FILE")
	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			log.Fatalf("read client file: %v", err)
		}
	default:
		log.Fatalf("set GMAIL_OAUTH_CLIENT_JSON or GMAIL_OAUTH_CLIENT_FILE")
	}

	cfg, err := google.ConfigFromJSON(b, gmailapi.GmailReadonlyScope)
	if err != nil {
		log.Fatalf("oauth config: %v", err)
	}

	// Start local server for redirect_uri http://localhost:8085/callback
	// Update the OAuth client to include this URI in authorized redirect URIs.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: ":" + redirectPort}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- code
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	url := cfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open this URL to authorize:\n%s\n", url)

	// Wait for code
	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		saveToSettings(b, tok)
	case <-time.After(5 * time.Minute):
		log.Fatalf("authorization timed out")
	case <-signalChan():
		log.Fatalf("interrupted")
	}
}

// saveToSettings writes the client config and exchanged token into the
// same settings rows the dashboard flow uses.
func saveToSettings(clientConfig []byte, tok *oauth2.Token) {
	appCfg := config.Load()
	repo, err := storage.NewSQLiteRepository(appCfg.SQLiteDBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.SetSetting(ctx, gmail.SettingClientConfig, string(clientConfig)); err != nil {
		log.Fatalf("save client config: %v", err)
	}

	svc := gmail.NewService(repo, appCfg.BaseURL)
	if err := svc.SaveToken(ctx, tok); err != nil {
		log.Fatalf("save token: %v", err)
	}
	fmt.Printf("Gmail connected, token saved to %s\n", appCfg.SQLiteDBPath)
}

func signalChan() <-chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	return c
}
