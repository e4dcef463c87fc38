package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/storefront/internal/cart"
	"github.com/donaldgifford/storefront/internal/catalog"
	"github.com/donaldgifford/storefront/internal/clock"
	"github.com/donaldgifford/storefront/internal/notify"
	"github.com/donaldgifford/storefront/internal/render"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

const browseHelp = `Type text to search (applied after a short pause), or a command:
  :search <text>     search immediately
  :category [name]   filter by category (no name for all)
  :min <n|->         lower price bound (- clears)
  :max <n|->         upper price bound (- clears)
  :sort <key>        newest, price_asc, price_desc, name, most_viewed
  :stock on|off      only items in stock
  :featured on|off   only featured items
  :page <n>          go to page n
  :next, :prev       next or previous page
  :clear             reset every filter
  :retry             reload the current page
  :add <id>          add an item of the current page to the cart
  :help, :quit`

var errQuit = errors.New("quit")

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <vertical>",
		Short: "Browse a vertical interactively",
		Long: "Open an interactive listing view. Typing searches as you go; filter,\n" +
			"sort and page commands refetch immediately and results that arrive\n" +
			"out of order are discarded.",
		Example: `  storefront browse materials
  storefront browse food --user u-42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			src, err := catalog.SourceFor(cfg.Verticals, args[0])
			if err != nil {
				return err
			}

			log := newLogger(cfg)
			notifier := notify.NewWriterNotifier(os.Stderr)
			c := newClient(cfg)

			q := catalog.NewQuery(c, src, catalog.Config{
				PageSize:  cfg.Verticals[args[0]].PageSize,
				Debounce:  cfg.Catalog.Debounce,
				Scheduler: clock.Real(),
				Logger:    log,
				Notifier:  notifier,
			})
			defer q.Close()

			store, closeStore, err := newCartService(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			h := cart.NewHandler(
				cart.StaticSession{User: currentUser()},
				store,
				notifier,
				log,
				cart.WithIndicatorDelay(cfg.Catalog.AddingIndicator),
			)

			s := newBrowseSession(q, h, os.Stdout, render.Options{
				SkeletonCount:  cfg.Catalog.SkeletonCount,
				MaxPageButtons: cfg.Catalog.MaxPageButtons,
			})
			return s.run(cmd.Context(), os.Stdin)
		},
	}
}

// adder is the add-to-cart side effect used by the session.
type adder interface {
	Add(ctx context.Context, it domain.Item) bool
}

// browseSession drives a catalog.Query from line commands and redraws the
// listing on every change.
type browseSession struct {
	q    *catalog.Query[domain.Item]
	cart adder
	opts render.Options

	mu  sync.Mutex
	out io.Writer
}

func newBrowseSession(
	q *catalog.Query[domain.Item],
	a adder,
	out io.Writer,
	opts render.Options,
) *browseSession {
	s := &browseSession{q: q, cart: a, out: out, opts: opts}
	q.OnChange(s.draw)
	return s
}

func (s *browseSession) draw(snap catalog.Snapshot[domain.Item]) {
	view := render.Render(
		snap.Loading,
		render.MapPage(snap.Page, render.CardFor),
		snap.State.SearchText,
		s.opts,
	)
	if snap.Err != nil && !snap.Loading {
		view.Error = catalog.LoadErrorMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\n[%s] %s\n", s.q.Name(), describeState(snap.State))
	_ = printView(s.out, view)
}

func (s *browseSession) run(ctx context.Context, in io.Reader) error {
	s.q.Mount(ctx)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := s.exec(ctx, sc.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printf("%v\n", err)
		}
	}
	return sc.Err()
}

// exec applies one input line to the query.
func (s *browseSession) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		s.q.SetSearchText(line)
		return nil
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "search":
		s.q.SetSearchText(arg)
		s.q.FlushSearch()
	case "category":
		s.q.SetCategory(arg)
	case "min", "max":
		v, err := parseBound(arg)
		if err != nil {
			return err
		}
		if name == "min" {
			s.q.SetPriceMin(v)
		} else {
			s.q.SetPriceMax(v)
		}
	case "sort":
		k, err := domain.ParseSortKey(arg)
		if err != nil {
			return err
		}
		s.q.SetSort(k)
	case "stock", "featured":
		on, err := parseSwitch(arg)
		if err != nil {
			return err
		}
		flag := domain.FlagInStock
		if name == "featured" {
			flag = domain.FlagFeatured
		}
		s.q.SetFlag(flag, on)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid page %q", arg)
		}
		s.q.SetPage(n)
	case "next":
		if !s.q.NextPage() {
			return errors.New("already on the last page")
		}
	case "prev":
		if !s.q.PrevPage() {
			return errors.New("already on the first page")
		}
	case "clear":
		s.q.ClearFilters()
	case "retry":
		s.q.Retry()
	case "add":
		return s.add(ctx, arg)
	case "help":
		s.printf("%s\n", browseHelp)
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try :help)", name)
	}
	return nil
}

func (s *browseSession) add(ctx context.Context, id string) error {
	for _, it := range s.q.Snapshot().Page.Items {
		if it.ID == id {
			s.cart.Add(ctx, it)
			return nil
		}
	}
	return fmt.Errorf("item %q is not on the current page", id)
}

func (s *browseSession) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func describeState(st domain.QueryState) string {
	parts := []string{"page " + strconv.Itoa(st.Page)}
	if st.SearchText != "" {
		parts = append(parts, "search="+strconv.Quote(st.SearchText))
	}
	if st.Category != domain.AllCategories {
		parts = append(parts, "category="+st.Category)
	}
	if st.PriceMin != nil {
		parts = append(parts, "min="+strconv.FormatFloat(*st.PriceMin, 'f', -1, 64))
	}
	if st.PriceMax != nil {
		parts = append(parts, "max="+strconv.FormatFloat(*st.PriceMax, 'f', -1, 64))
	}
	if st.Sort != domain.SortNewest {
		parts = append(parts, "sort="+string(st.Sort))
	}
	for _, f := range []string{domain.FlagInStock, domain.FlagFeatured} {
		if st.Flag(f) {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

func parseBound(arg string) (*float64, error) {
	if arg == "" || arg == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", arg)
	}
	return &v, nil
}

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", arg)
	}
}
