// Command session-check loads a stored session snapshot, verifies it
// against the live API, and attempts a token refresh when the access
// token has expired. Exit status 0 means the snapshot is usable.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vintedapi/vinted-go/pkg/vinted"
)

func main() {
	var (
		snapshotPath = flag.String("snapshot", ".vinted_session.json", "path to the session snapshot file")
		domain       = flag.String("domain", "fr", "marketplace locale domain")
		userAgent    = flag.String("user-agent", "", "user agent string (required)")
		proxy        = flag.String("proxy", "", "optional proxy URL")
		timeout      = flag.Duration("timeout", 30*time.Second, "per-call timeout")
		save         = flag.Bool("save", true, "write the refreshed snapshot back on success")
	)
	flag.Parse()

	if *userAgent == "" {
		log.Fatal("a -user-agent is required")
	}

	client, err := vinted.NewClient(&vinted.ClientOptions{
		UserAgent: *userAgent,
		Domain:    *domain,
		Proxy:     *proxy,
		Timeout:   *timeout,
	})
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	if err := client.Auth.LoadSnapshot(*snapshotPath); err != nil {
		log.Fatalf("failed to load snapshot %s: %v", *snapshotPath, err)
	}

	ctx := context.Background()

	user, err := client.Users.Current(ctx)
	if vinted.IsAuthError(err) {
		log.Println("access token expired, attempting refresh")
		if _, rerr := client.Auth.Refresh(ctx, ""); rerr != nil {
			log.Fatalf("refresh failed, re-authentication required: %v", rerr)
		}
		user, err = client.Users.Current(ctx)
	}
	if err != nil {
		if vinted.IsAntiBotError(err) {
			log.Fatal("blocked by anti-bot challenge; obtain a fresh datadome cookie and inject it into the snapshot")
		}
		log.Fatalf("session check failed: %v", err)
	}

	fmt.Printf("session OK: logged in as %s (user %d)\n", user.Login, user.ID)
	if !client.AntiBotCleared() {
		fmt.Println("note: no datadome clearance cookie present, block probability is elevated")
	}

	if *save {
		if err := client.Auth.SaveSnapshot(*snapshotPath); err != nil {
			log.Printf("warning: failed to write snapshot back: %v", err)
			os.Exit(0)
		}
	}
}
