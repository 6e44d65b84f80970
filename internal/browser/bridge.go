package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Bridge manages headless Chrome instances for rendering JavaScript-heavy
// pages that plain HTTP fetching cannot read.
type Bridge struct {
	profileDir string
	headless   bool
	logger     *slog.Logger
}

// BridgeConfig holds configuration for the browser bridge.
type BridgeConfig struct {
	ProfileDir string // Chrome user data directory (persists cookies/sessions)
	Headless   bool   // Run headless (true) or with visible UI (false)
	Logger     *slog.Logger
}

func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.ProfileDir == "" {
		home, _ := os.UserHomeDir()
		cfg.ProfileDir = filepath.Join(home, ".answerbot", "chrome-profiles", "default")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bridge{
		profileDir: cfg.ProfileDir,
		headless:   cfg.Headless,
		logger:     cfg.Logger,
	}
}

// NewContext creates a new chromedp context with the bridge's Chrome profile.
// The caller MUST call cancel() when done.
func (b *Bridge) NewContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	if err := os.MkdirAll(b.profileDir, 0o755); err != nil {
		b.logger.Error("failed to create profile dir", "dir", b.profileDir, "err", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(b.profileDir),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
	)

	if b.headless {
		opts = append(opts, chromedp.Headless)
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	cancelAll := func() {
		taskCancel()
		allocCancel()
	}

	return taskCtx, cancelAll
}

// RenderText navigates to a URL, waits for the page to settle, and returns
// the visible text of the document body.
func (b *Bridge) RenderText(ctx context.Context, url string) (string, error) {
	taskCtx, cancel := b.NewContext(ctx)
	defer cancel()

	taskCtx, taskCancel := context.WithTimeout(taskCtx, 60*time.Second)
	defer taskCancel()

	b.logger.Debug("rendering page in browser", "url", url)

	var text string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second), // let late scripts populate the DOM
		chromedp.Evaluate(`document.body ? (document.body.innerText || document.body.textContent || '') : ''`, &text),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return text, nil
}
