package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/config"
	"github.com/dmitrijs2005/mediashare/internal/client/invalidation"
	"github.com/dmitrijs2005/mediashare/internal/client/likes"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/client/query"
	"github.com/dmitrijs2005/mediashare/internal/client/securestore"
	"github.com/dmitrijs2005/mediashare/internal/client/services"
	"github.com/dmitrijs2005/mediashare/internal/client/upload"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/filex"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

const dbFileName = "mediashare.db"

// getSecret is an indirection used to facilitate testing.
var getSecret = GetSecret

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	session    *services.SessionManager
	accounts   *services.AccountService
	aggregator *services.Aggregator
	media      *services.MediaService
	comments   *services.CommentService
	likesAPI   client.LikesAPI
	bus        *invalidation.Bus
	feed       *query.Query[feedSnapshot]

	mu    sync.Mutex
	likes map[int64]*likes.Controller

	closers []func()
}

// deps are the outward-facing parts of the App. NewApp builds the real ones;
// tests point them at a fake backend.
type deps struct {
	api      client.Client
	store    securestore.TokenStore
	uploader upload.Uploader
}

// NewApp builds the App from c: it prepares the data directory, unlocks the
// token store and connects the REST client and uploader.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := securestore.OpenDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	passphrase := []byte(c.StorePassphrase)
	if len(passphrase) == 0 {
		passphrase, err = getSecret(os.Stdout, "Store passphrase: ")
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	defer common.WipeByteArray(passphrase)

	store, err := securestore.NewSQLiteStore(ctx, db, passphrase)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	closeStore := func() {
		store.Close()
		_ = db.Close()
	}

	api, err := client.New(client.Config{
		AuthAPI:           c.AuthAPI,
		MediaAPI:          c.MediaAPI,
		Timeout:           c.RequestTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		closeStore()
		return nil, err
	}

	uploader, err := newUploader(ctx, c, api)
	if err != nil {
		closeStore()
		return nil, err
	}

	a := newApp(c, deps{api: api, store: store, uploader: uploader}, logger, os.Stdin, os.Stdout)
	a.closers = append(a.closers, closeStore)
	return a, nil
}

func newUploader(ctx context.Context, c *config.Config, api *client.HTTPClient) (upload.Uploader, error) {
	if c.UploadBackend == config.UploadS3 {
		return upload.NewS3Uploader(ctx, upload.S3Config{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			KeyPrefix:       c.S3KeyPrefix,
		})
	}
	return upload.NewHTTPUploader(api, c.UploadAPI), nil
}

func newApp(c *config.Config, d deps, logger logging.Logger, in io.Reader, out io.Writer) *App {
	bus := invalidation.New()
	session := services.NewSessionManager(d.api, d.store, logger)
	agg := services.NewAggregator(d.api, d.api, d.api,
		services.WithOwnerDedupe(c.DedupeOwnerLookups),
		services.WithAggregatorLogger(logger),
	)

	a := &App{
		config:     c,
		logger:     logger,
		reader:     bufio.NewReader(in),
		out:        out,
		session:    session,
		accounts:   services.NewAccountService(d.api, logger),
		aggregator: agg,
		media:      services.NewMediaService(d.api, d.uploader, session, bus, logger),
		comments:   services.NewCommentService(d.api, agg, session, bus),
		likesAPI:   d.api,
		bus:        bus,
		likes:      make(map[int64]*likes.Controller),
	}
	a.feed = query.New[feedSnapshot]("feed", a.fetchFeed, logger)
	return a
}

// feedSnapshot is the aggregated feed as of bus version.
type feedSnapshot struct {
	version uint64
	items   []models.MediaItemWithOwner
}

func (a *App) fetchFeed(ctx context.Context) (feedSnapshot, error) {
	v := a.bus.Version()
	items, err := a.aggregator.ListMediaWithOwners(ctx)
	if err != nil {
		return feedSnapshot{}, err
	}
	return feedSnapshot{version: v, items: items}, nil
}

// Run restores the previous session, starts the feed refresher and serves
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to mediashare CLI (type 'help' for commands)")

	if sf := a.session.AutoLogin(ctx); !sf.OK() {
		sf.Log(ctx, a.logger)
	} else if u := a.session.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s\n", u.Username)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.feed.Watch(ctx, a.bus); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn(ctx, "feed watcher stopped", "error", err)
		}
	}()

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}

// Close releases the feed and the token store. It is safe to call twice.
func (a *App) Close() {
	a.feed.Close()
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	if u := a.session.CurrentUser(); u != nil {
		return fmt.Sprintf("(%s)", u.Username)
	}
	return ""
}

// likeController returns the controller of mediaID, creating it on first
// use. fresh reports whether it was just created and holds no state yet.
func (a *App) likeController(mediaID int64) (c *likes.Controller, fresh bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.likes[mediaID]
	if !ok {
		fresh = true
		c = likes.NewController(mediaID, a.likesAPI, a.session,
			likes.WithOptimistic(a.config.OptimisticLikes),
			likes.WithLogger(a.logger),
		)
		a.likes[mediaID] = c
	}
	return c, fresh
}

// resetLikes drops every controller; the viewer's own likes change with the
// logged-in user.
func (a *App) resetLikes() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.likes)
}

// report shows err to the user and records it at debug level.
func (a *App) report(ctx context.Context, op string, err error) {
	a.logger.Debug(ctx, "command failed", "op", op, "error", err)
	fmt.Fprintln(a.out, "Error:", err)
}
