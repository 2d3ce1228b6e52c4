// Package prefetch wraps the nix-prefetch-url tool to compute content
// addresses for plugin artifacts.
package prefetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nix-community/go-nix/pkg/nixbase32"
	"github.com/sirupsen/logrus"
)

// Prefetcher computes the sha256 of an artifact at url, returning the digest
// in nix base32 encoding. With unpack set, archives are unpacked before
// hashing; with executable set, the file is hashed as a single executable.
type Prefetcher interface {
	Hash(ctx context.Context, name, url string, unpack, executable bool) (string, error)
}

// Tool runs the real nix-prefetch-url binary.
type Tool struct {
	log          *logrus.Logger
	prefetchPath string
	storePath    string
}

func NewTool(log *logrus.Logger, prefetchPath, storePath string) *Tool {
	return &Tool{
		log:          log,
		prefetchPath: prefetchPath,
		storePath:    storePath,
	}
}

func (t *Tool) Hash(ctx context.Context, name, url string, unpack, executable bool) (string, error) {
	args := []string{"--print-path", "--type", "sha256", "--name", name}
	if unpack {
		args = append(args, "--unpack")
	}
	if executable {
		args = append(args, "--executable")
	}
	args = append(args, url)

	out, err := exec.CommandContext(ctx, t.prefetchPath, args...).Output()
	if err != nil {
		return "", fmt.Errorf("nix-prefetch-url failed for %s: %w", url, err)
	}
	hash, storePath, found := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if !found {
		return "", fmt.Errorf("nix-prefetch-url generated invalid output: %q", string(out))
	}

	// Forget the store path again to bound disk usage. Best effort: a failed
	// delete must not fail the resolution.
	if err := exec.CommandContext(ctx, t.storePath, "--delete", storePath).Run(); err != nil {
		t.log.Warnf("failed to delete store path %s: %v", storePath, err)
	}

	return hash, nil
}

// EncodeHash converts a nix base32 sha256 digest into the standard base64
// encoding the database stores.
func EncodeHash(nix32 string) (string, error) {
	raw, err := nixbase32.DecodeString(nix32)
	if err != nil {
		return "", fmt.Errorf("failed decoding nix hash %q: %w", nix32, err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
