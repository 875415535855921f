// Package crawler orchestrates a harvest run: pagination, change detection,
// export and state persistence.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hydrocare/harvester/internal/article"
	"github.com/hydrocare/harvester/internal/clock"
	"github.com/hydrocare/harvester/internal/config"
	"github.com/hydrocare/harvester/internal/export"
	"github.com/hydrocare/harvester/internal/fetcher"
	"github.com/hydrocare/harvester/internal/listing"
	"github.com/hydrocare/harvester/internal/progress"
	"github.com/hydrocare/harvester/internal/state"
	"github.com/hydrocare/harvester/internal/version"
)

// Fetcher is the outbound HTTP dependency of the engine.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Response, error)
}

// IDGenerator issues run identifiers.
type IDGenerator interface {
	NewID() string
}

// Summary reports what one run did.
type Summary struct {
	RunID   string
	Pages   int
	Seen    int
	New     int
	Updated int
	Skipped int
	Failed  int
}

// Written returns the number of records appended to the sinks.
func (s Summary) Written() int {
	return s.New + s.Updated
}

// Engine drives one harvest run over a paginated listing.
type Engine struct {
	cfg    config.Config
	fetch  Fetcher
	store  *state.Store
	sinks  []export.Sink
	emit   progress.Emitter
	clock  clock.Clock
	ids    IDGenerator
	logger *zap.Logger
}

// New wires an Engine from its dependencies. The store must already be
// loaded; the engine mutates and saves it as pages complete.
func New(cfg config.Config, fetch Fetcher, store *state.Store, sinks []export.Sink,
	emit progress.Emitter, clk clock.Clock, ids IDGenerator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		fetch:  fetch,
		store:  store,
		sinks:  sinks,
		emit:   emit,
		clock:  clk,
		ids:    ids,
		logger: logger,
	}
}

// Run walks listing pages in order until the page cap, the item limit, an
// empty listing, or cancellation stops it. State is saved after every page,
// so an interrupted run resumes where it left off.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: e.ids.NewID()}

	base, err := url.Parse(e.cfg.Crawl.BaseURL)
	if err != nil {
		return sum, fmt.Errorf("parse base url: %w", err)
	}

	e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StageRunStart, URL: base.String()})
	e.logger.Info("run starting",
		zap.String("run_id", sum.RunID),
		zap.String("base_url", base.String()),
		zap.Int("max_pages", e.cfg.Crawl.MaxPages),
		zap.Bool("versioning", e.cfg.Crawl.Versioning),
	)

	limitReached := false
pages:
	for page := 1; page <= e.cfg.Crawl.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			break
		}

		pageURL := PageURL(base, page)
		cards, err := e.fetchListing(ctx, pageURL)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			if page == 1 {
				return sum, fmt.Errorf("listing page %d: %w", page, err)
			}
			// Past the last page many sites answer 404 rather than an empty
			// listing, so a failure mid-pagination ends the walk.
			e.logger.Warn("listing page failed, stopping pagination",
				zap.String("url", pageURL), zap.Int("page", page), zap.Error(err))
			break
		}
		if len(cards) == 0 {
			e.logger.Info("empty listing page, pagination complete", zap.Int("page", page))
			break
		}

		for _, card := range cards {
			if err := ctx.Err(); err != nil {
				break pages
			}
			if e.cfg.Crawl.Limit > 0 && sum.Written() >= e.cfg.Crawl.Limit {
				limitReached = true
				break pages
			}
			e.processCard(ctx, &sum, page, card)
		}

		sum.Pages++
		if err := e.store.Save(); err != nil {
			return sum, fmt.Errorf("save state after page %d: %w", page, err)
		}
		e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StagePageDone, Page: page, URL: pageURL})
	}

	if err := e.store.Save(); err != nil {
		return sum, fmt.Errorf("save final state: %w", err)
	}

	e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StageRunDone,
		Note: fmt.Sprintf("new=%d updated=%d skipped=%d failed=%d", sum.New, sum.Updated, sum.Skipped, sum.Failed)})
	e.logger.Info("run finished",
		zap.String("run_id", sum.RunID),
		zap.Int("pages", sum.Pages),
		zap.Int("new", sum.New),
		zap.Int("updated", sum.Updated),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
		zap.Bool("limit_reached", limitReached),
	)

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

func (e *Engine) fetchListing(ctx context.Context, pageURL string) ([]listing.Card, error) {
	resp, err := e.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	return listing.Parse(doc, u), nil
}

// processCard handles one article card end to end. A detail-page failure is
// logged and counted but never aborts the run.
func (e *Engine) processCard(ctx context.Context, sum *Summary, page int, card listing.Card) {
	sum.Seen++
	prior, known := e.store.Get(card.URL)

	if !version.ShouldFetch(known, e.cfg.Crawl.Versioning) {
		sum.Skipped++
		e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StageArticleSkipped,
			Page: page, URL: card.URL, Title: card.Title, Version: prior.Version})
		return
	}

	art, err := e.harvest(ctx, card)
	if err != nil {
		sum.Failed++
		e.logger.Warn("article failed", zap.String("url", card.URL), zap.Error(err))
		e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StageArticleFailed,
			Page: page, URL: card.URL, Title: card.Title, Note: err.Error()})
		return
	}

	dec := version.Decide(prior, known, art.ContentHash, e.cfg.Crawl.Versioning)
	switch dec.Action {
	case version.ActionSkip:
		sum.Skipped++
		e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StageArticleSkipped,
			Page: page, URL: card.URL, Title: art.Title, Version: prior.Version})
		return
	case version.ActionNew:
		sum.New++
	case version.ActionUpdate:
		sum.Updated++
	}

	art.Version = dec.Version
	art.PreviousHash = dec.PreviousHash

	for _, sink := range e.sinks {
		if err := sink.Write(art); err != nil {
			sum.Failed++
			e.logger.Error("export write failed", zap.String("url", art.URL), zap.Error(err))
			e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: progress.StageArticleFailed,
				Page: page, URL: art.URL, Title: art.Title, Note: err.Error()})
			return
		}
	}

	e.store.Put(art.URL, state.Entry{Hash: art.ContentHash, Version: art.Version})

	stage := progress.StageArticleNew
	if dec.Action == version.ActionUpdate {
		stage = progress.StageArticleUpdated
	}
	e.emit.Emit(progress.Event{RunID: sum.RunID, TS: e.clock.Now(), Stage: stage,
		Page: page, URL: art.URL, Title: art.Title, Version: art.Version})
}

// harvest fetches and assembles one detail page.
func (e *Engine) harvest(ctx context.Context, card listing.Card) (article.Article, error) {
	resp, err := e.fetch.Fetch(ctx, card.URL)
	if err != nil {
		return article.Article{}, err
	}
	doc, err := resp.Document()
	if err != nil {
		return article.Article{}, err
	}
	u, err := url.Parse(card.URL)
	if err != nil {
		return article.Article{}, fmt.Errorf("parse article url: %w", err)
	}
	detail := article.ParseDetail(doc, u, e.cfg.Crawl.KeepHTML)
	return article.Assemble(card, detail, e.clock.Now()), nil
}

// PageURL derives the listing URL for a 1-based page number. Page 1 is the
// base URL itself; later pages use the page/N/ convention.
func PageURL(base *url.URL, page int) string {
	if page <= 1 {
		return base.String()
	}
	s := base.String()
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return fmt.Sprintf("%spage/%d/", s, page)
}
