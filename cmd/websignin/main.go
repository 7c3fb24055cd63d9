// Package main provides the entry point for the websignin tool, an
// interactive OAuth2/OIDC sign-in client for desktop use. It plans the
// authorization request from a YAML flow configuration, walks the user
// through the provider's sign-in pages in a browser, and prints the
// terminal redirect parameters (and, when a token endpoint is configured,
// the exchanged tokens).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/websignin/websignin/internal/buildinfo"
	"github.com/websignin/websignin/internal/callback"
	"github.com/websignin/websignin/internal/config"
	"github.com/websignin/websignin/internal/logging"
	"github.com/websignin/websignin/internal/util"
	"github.com/websignin/websignin/sdk/authflow"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = "config.yaml"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

// main parses command-line flags, loads the flow configuration, and runs
// one interactive authorization flow.
func main() {
	fmt.Printf("websignin Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	var configPath string
	var noBrowser bool
	var callbackPort int
	var usePAR bool
	var timeout time.Duration
	var pattern string

	flag.StringVar(&configPath, "config", DefaultConfigPath, "Flow configuration file path")
	flag.BoolVar(&noBrowser, "no-browser", false, "Don't open browser automatically, print the URL instead")
	flag.IntVar(&callbackPort, "callback-port", 0, "Override the loopback callback port")
	flag.BoolVar(&usePAR, "par", false, "Use the pushed authorization request endpoint from the config")
	flag.DurationVar(&timeout, "timeout", 0, "Abandon the flow after this duration (0 waits indefinitely)")
	flag.StringVar(&pattern, "pattern", "", "Override the completion pattern regexp")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err = logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogDir); err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}
	if callbackPort > 0 {
		cfg.CallbackPort = callbackPort
	}
	if pattern != "" {
		cfg.CompletionPattern = pattern
	}

	surfaceCfg := cfg.SurfaceConfig()
	surfaceCfg.NoBrowser = noBrowser
	surface := callback.New(cfg.CallbackPort, cfg.CallbackPath, surfaceCfg)

	httpClient := util.SetProxy(cfg.ProxyURL, &http.Client{Timeout: 30 * time.Second})
	client := &authflow.Client{
		Options:           cfg.FlowOptions(),
		Poster:            authflow.NewHTTPPoster(httpClient),
		CompletionPattern: cfg.CompletionPattern,
	}
	if usePAR {
		if cfg.PARURL == "" {
			log.Fatal("par requested but no par-url configured")
		}
		client.PAREndpoint = cfg.PARURL
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// An interrupt abandons the flow the same way closing the window would.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		surface.Cancel()
	}()

	planned, result, err := client.Authorize(ctx, surface)
	if err != nil {
		if errors.Is(err, authflow.ErrUserCancelled) {
			log.Warn("sign-in cancelled")
			os.Exit(2)
		}
		log.Fatalf("sign-in failed: %v", err)
	}

	printResult("Authorization result", result)

	if code, description, failed := result.ProviderError(); failed {
		log.Errorf("provider returned error %s: %s", code, description)
		os.Exit(1)
	}
	if echoed := result.Get("state"); echoed != "" && echoed != planned.State {
		log.Fatalf("state mismatch: sent %s, received %s", planned.State, echoed)
	}

	if cfg.TokenURL != "" && result.Get("code") != "" {
		tokenReq := &authflow.TokenRequest{
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Code:         result.Get("code"),
		}
		if planned.PKCE != nil {
			tokenReq.CodeVerifier = planned.PKCE.CodeVerifier
		}
		tokens, errExchange := authflow.Exchange(ctx, client.Poster, tokenReq)
		if errExchange != nil {
			log.Fatalf("token exchange failed: %v", errExchange)
		}
		printResult("Token result", tokens)
	}
}

// printResult writes the flow outcome to stdout with stable key ordering.
func printResult(title string, result *authflow.Result) {
	fmt.Printf("\n%s:\n", title)
	keys := make([]string, 0, len(result.Params))
	for key := range result.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %s = %s\n", key, result.Params[key])
	}
	if !result.Expiry.IsZero() {
		fmt.Printf("  expiry_datetime = %s\n", result.Expiry.Format(time.RFC3339))
	}
}
