// Package ide models the JetBrains IDE products tracked by the plugin
// database and collects the currently supported releases from the vendor
// release feeds.
package ide

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Product is a JetBrains IDE product, identified by its canonical nixpkgs
// attribute key.
type Product string

const (
	IntelliJUltimate    Product = "idea-ultimate"
	IntelliJCommunity   Product = "idea-community"
	PhpStorm            Product = "phpstorm"
	WebStorm            Product = "webstorm"
	PyCharmProfessional Product = "pycharm-professional"
	PyCharmCommunity    Product = "pycharm-community"
	RubyMine            Product = "ruby-mine"
	CLion               Product = "clion"
	GoLand              Product = "goland"
	DataGrip            Product = "datagrip"
	DataSpell           Product = "dataspell"
	Rider               Product = "rider"
	AndroidStudio       Product = "android-studio"
	RustRover           Product = "rust-rover"
	Aqua                Product = "aqua"
	Writerside          Product = "writerside"
	Mps                 Product = "mps"
)

// productsByCode maps the product codes used in the JetBrains updates feed.
var productsByCode = map[string]Product{
	"IU":  IntelliJUltimate,
	"IC":  IntelliJCommunity,
	"PS":  PhpStorm,
	"WS":  WebStorm,
	"PY":  PyCharmProfessional,
	"PC":  PyCharmCommunity,
	"RM":  RubyMine,
	"CL":  CLion,
	"GO":  GoLand,
	"DB":  DataGrip,
	"DS":  DataSpell,
	"RD":  Rider,
	"AI":  AndroidStudio,
	"RR":  RustRover,
	"QA":  Aqua,
	"WRS": Writerside,
	"MPS": Mps,
}

var productsByKey = func() map[string]Product {
	m := make(map[string]Product, len(productsByCode))
	for _, p := range productsByCode {
		m[string(p)] = p
	}
	return m
}()

// ProductByCode resolves an updates-feed product code like "IU".
func ProductByCode(code string) (Product, bool) {
	p, ok := productsByCode[code]
	return p, ok
}

// ProductByKey resolves a canonical key like "idea-ultimate".
func ProductByKey(key string) (Product, bool) {
	p, ok := productsByKey[key]
	return p, ok
}

// Identity identifies one IDE release in the persisted database. Two
// identities are equal iff product and version match; the build number is
// deliberately not part of the identity because it cannot be recovered from
// a persisted filename.
type Identity struct {
	Product Product
	Version string
}

// Filename returns the deterministic per-IDE database filename.
func (i Identity) Filename() string {
	return fmt.Sprintf("%s-%s.json", i.Product, i.Version)
}

func (i Identity) String() string {
	return string(i.Product) + "-" + i.Version
}

// IdentityFromFilename parses a per-IDE database filename. The returned
// identity carries no build number.
func IdentityFromFilename(name string) (Identity, bool) {
	name, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return Identity{}, false
	}
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return Identity{}, false
	}
	product, ok := ProductByKey(name[:idx])
	if !ok {
		return Identity{}, false
	}
	return Identity{Product: product, Version: name[idx+1:]}, true
}

// IDE is an IDE release as discovered from a vendor feed, including the
// build number needed for plugin compatibility resolution.
type IDE struct {
	Identity
	BuildNumber string
}

// versionPrefixes is the allow-list of release series the database tracks.
var versionPrefixes = []string{"2027.", "2026.", "2025.", "2024.3."}

func versionAllowed(version string) bool {
	for _, prefix := range versionPrefixes {
		if strings.HasPrefix(version, prefix) {
			return true
		}
	}
	return false
}

// Collector fetches IDE releases from the vendor feeds.
type Collector struct {
	log              *logrus.Logger
	client           *retryablehttp.Client
	updatesURL       string
	androidStudioURL string
}

func NewCollector(log *logrus.Logger, client *retryablehttp.Client, updatesURL, androidStudioURL string) *Collector {
	return &Collector{
		log:              log,
		client:           client,
		updatesURL:       updatesURL,
		androidStudioURL: androidStudioURL,
	}
}

// Collect fetches both vendor feeds concurrently and returns every release
// on the allow-list, with build numbers populated.
func (c *Collector) Collect(ctx context.Context) ([]IDE, error) {
	var jetbrains, androidStudio []IDE
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jetbrains, err = c.collectJetBrains(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		androidStudio, err = c.collectAndroidStudio(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(jetbrains, androidStudio...), nil
}
