package cards

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Prober checks whether an image source can be loaded. Remote sources are
// probed with HEAD, local ones with stat.
type Prober struct {
	client *http.Client
}

func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	return &Prober{client: client}
}

// Check returns nil when src is usable. The placeholder and builtin images
// always are.
func (p *Prober) Check(ctx context.Context, src string) error {
	switch {
	case src == Placeholder || strings.HasPrefix(src, BuiltinPrefix):
		return nil
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		return p.head(ctx, src)
	default:
		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("image %s: %w", src, err)
		}
		return nil
	}
}

func (p *Prober) head(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HEAD %s: %s", url, resp.Status)
	}
	return nil
}
