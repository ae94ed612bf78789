package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/semtext/pkg/semtext/config"
	"github.com/cognicore/semtext/pkg/semtext/index"
	"github.com/cognicore/semtext/pkg/semtext/internalerr"
	"github.com/cognicore/semtext/pkg/semtext/store"
	"github.com/cognicore/semtext/pkg/semtext/store/sqlite"
)

var (
	dbPath    string
	conceptID int64
	entityID  int64
	scanLimit int
)

var storeCmd = &cobra.Command{
	Use:   "store <nltext.json>",
	Short: "Encode annotated text and persist the semantic string",
	Args:  cobra.ExactArgs(1),
	RunE:  runStore,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored semantic strings",
	Long: `Searches stored documents by concept id, entity id and free text.
All given criteria must match.

Example:
  semtext search --db docs.db --concept 42
  semtext search --db docs.db --entity 7 "city hall"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(searchCmd)

	storeCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides store.path)")
	storeCmd.Flags().BoolVar(&reviewed, "reviewed", false, "mark selected meanings as reviewed")

	searchCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides store.path)")
	searchCmd.Flags().Int64Var(&conceptID, "concept", 0, "concept id to match")
	searchCmd.Flags().Int64Var(&entityID, "entity", 0, "entity id to match")
	searchCmd.Flags().IntVar(&scanLimit, "scan", 1000, "number of most recent documents to search")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	path := cfg.Store.Path
	if dbPath != "" {
		path = dbPath
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no database, set --db or store.path", internalerr.ErrInvalidConfig)
	}
	return sqlite.Open(ctx, path)
}

func runStore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	comp, logger, err := components(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	text, err := readNLText(args[0])
	if err != nil {
		return err
	}
	ss, err := comp.SemanticString.SemanticString(comp.NLText.Convert(text, comp.Reviewed))
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	st, err := openStore(ctx, comp.Config)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := st.Put(ctx, store.Doc{Text: text.Text, SemanticString: ss})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	logger.Info("stored document", zap.String("id", doc.ID), zap.Int("terms", len(ss.Terms())))
	fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	q := index.Query{Limit: cfg.Index.MaxResults}
	if len(args) == 1 {
		q.Text = strings.TrimSpace(args[0])
	}
	if cmd.Flags().Changed("concept") {
		q.ConceptID = &conceptID
	}
	if cmd.Flags().Changed("entity") {
		q.EntityID = &entityID
	}

	hits, err := search(ctx, st, q, cfg, logger)
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.3f\n", h.ID, h.Score)
	}
	return nil
}

// search answers id-only queries from the store and loads the most
// recent documents into an in-memory index for everything else.
func search(ctx context.Context, st store.Store, q index.Query, cfg *config.Config, logger *zap.Logger) ([]index.Hit, error) {
	if q.Text == "" && (q.ConceptID == nil) != (q.EntityID == nil) {
		var docs []store.Doc
		var err error
		if q.ConceptID != nil {
			docs, err = st.FindByConcept(ctx, *q.ConceptID, q.Limit)
		} else {
			docs, err = st.FindByEntity(ctx, *q.EntityID, q.Limit)
		}
		if err != nil {
			return nil, err
		}
		hits := make([]index.Hit, 0, len(docs))
		for _, d := range docs {
			hits = append(hits, index.Hit{ID: d.ID, Score: 1})
		}
		return hits, nil
	}

	idx, err := index.New(index.Options{MaxResults: cfg.Index.MaxResults, Logger: logger.Named("index")})
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	docs, err := st.List(ctx, scanLimit)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if err := idx.Add(d); err != nil {
			return nil, err
		}
	}
	return idx.Search(ctx, q)
}
