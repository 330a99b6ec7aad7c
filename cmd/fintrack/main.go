package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/aggregate"
	"github.com/dsamoilenko/fintrack/internal/archive"
	"github.com/dsamoilenko/fintrack/internal/bankfeed"
	"github.com/dsamoilenko/fintrack/internal/config"
	"github.com/dsamoilenko/fintrack/internal/importer"
	"github.com/dsamoilenko/fintrack/internal/ledger"
	"github.com/dsamoilenko/fintrack/internal/logger"
	"github.com/dsamoilenko/fintrack/internal/rates"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "balances":
		withApp(log, runBalances)
	case "transactions":
		withApp(log, runTransactions)
	case "total":
		withApp(log, runTotal)
	case "report":
		withApp(log, runReport)
	case "import":
		withApp(log, runImport)
	case "rates":
		withApp(log, runRates)
	case "refresh-rates":
		withApp(log, runRefreshRates)
	case "link":
		withApp(log, runLink)
	case "sync":
		withApp(log, runSync)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("fintrack - personal finance tracker")
	fmt.Println("\nUsage:")
	fmt.Println("  fintrack <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  balances        List, create, update or delete balances")
	fmt.Println("  transactions    List, create, update or delete transactions on a balance")
	fmt.Println("  total           Net worth in the reference currency")
	fmt.Println("  report          Profits and losses over the trailing month")
	fmt.Println("  import          Import a bank export file (CSV or XLSX) into a balance")
	fmt.Println("  rates           List or search cached exchange rates")
	fmt.Println("  refresh-rates   Force a rate refresh")
	fmt.Println("  link            Link a bank feed token, watch or unwatch accounts")
	fmt.Println("  sync            Sync watched bank feed accounts")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nRun 'fintrack <command> -h' for more information on a command.")
}

// app bundles the wired services behind the CLI commands.
type app struct {
	cfg          *config.Config
	log          zerolog.Logger
	balances     *ledger.BalanceService
	transactions *ledger.Service
	rates        *rates.Cache
	aggregate    *aggregate.Service
	importer     *importer.Service
	feed         *bankfeed.Service
}

func withApp(log zerolog.Logger, run func(ctx context.Context, a *app)) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration failed")
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Opening database failed")
	}

	cache := rates.NewCache(
		db.Currencies(),
		rates.NewMonobankSource(cfg.RateSourceURL),
		rates.NewCoinGeckoSource(cfg.CryptoSourceURL),
		log,
	)
	feed := bankfeed.New(
		db.Feed(), db.Balances(), db.Transactions(), db.Currencies(),
		bankfeed.NewClient(cfg.BankFeedURL),
		log,
	)

	var arch archive.Archiver
	if cfg.ArchiveBucket != "" {
		arch = archive.NewGCS(cfg.ArchiveBucket)
	}

	a := &app{
		cfg:          cfg,
		log:          log,
		balances:     ledger.NewBalanceService(db.Balances(), db.Currencies(), feed),
		transactions: ledger.NewService(db.Balances(), db.Transactions(), log),
		rates:        cache,
		aggregate:    aggregate.New(db.Balances(), db.Transactions(), cache, log),
		importer:     importer.New(db.Balances(), db.Transactions(), arch, log),
		feed:         feed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	run(ctx, a)
}

// userID returns the acting user or exits. Identity comes from the
// environment; token issuance is outside this system.
func (a *app) userID() string {
	if a.cfg.UserID == "" {
		a.log.Fatal().Msg("Error: FINTRACK_USER is required")
	}
	return a.cfg.UserID
}

func runBalances(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("balances", flag.ExitOnError)
	create := fs.Bool("create", false, "Create a balance")
	update := fs.String("update", "", "Balance ID to update")
	del := fs.String("delete", "", "Balance ID to delete")
	name := fs.String("name", "", "Balance name")
	currency := fs.String("currency", "", "Currency alpha code, e.g. UAH")
	amount := fs.String("amount", "", "Initial amount")
	fs.Parse(os.Args[2:])

	user := a.userID()
	switch {
	case *create:
		in := ledger.BalanceInput{Name: *name, CurrencyCode: *currency}
		if *amount != "" {
			in.InitialAmount = parseDecimal(a.log, *amount)
		}
		b, err := a.balances.Create(ctx, user, in)
		if err != nil {
			a.log.Fatal().Err(err).Msg("Creating balance failed")
		}
		fmt.Printf("Created balance %s\n", b.ID)
	case *update != "":
		in := ledger.BalanceInput{Name: *name, CurrencyCode: *currency}
		if _, err := a.balances.Update(ctx, user, *update, in); err != nil {
			a.log.Fatal().Err(err).Msg("Updating balance failed")
		}
		fmt.Println("Balance updated.")
	case *del != "":
		if err := a.balances.Delete(ctx, user, *del); err != nil {
			a.log.Fatal().Err(err).Msg("Deleting balance failed")
		}
		fmt.Println("Balance deleted.")
	default:
		balances, err := a.balances.List(ctx, user)
		if err != nil {
			a.log.Fatal().Err(err).Msg("Listing balances failed")
		}
		for _, b := range balances {
			fmt.Printf("%s  %-20s %12s %s\n", b.ID, b.Name, b.Amount.StringFixed(2), b.Currency.AlphaCode)
		}
	}
}

func runTransactions(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	balanceID := fs.String("balance", "", "Balance ID")
	create := fs.Bool("create", false, "Create a transaction")
	update := fs.String("update", "", "Transaction ID to update")
	del := fs.String("delete", "", "Transaction ID to delete")
	name := fs.String("name", "", "Transaction name")
	category := fs.String("category", "", "Transaction category")
	amount := fs.String("amount", "", "Signed amount, negative for expenses")
	date := fs.String("date", "", "Date (YYYY-MM-DD), defaults to now")
	sortField := fs.String("sort", "date", "Sort field: date or amount")
	order := fs.String("order", "desc", "Sort order: asc or desc")
	fs.Parse(os.Args[2:])

	user := a.userID()
	switch {
	case *create, *update != "":
		in := ledger.TransactionInput{
			BalanceID: *balanceID,
			Name:      *name,
			Category:  *category,
			Date:      parseDate(a.log, *date),
		}
		if *amount != "" {
			in.Amount = parseDecimal(a.log, *amount)
		}
		if *update != "" {
			if _, err := a.transactions.Update(ctx, user, *update, in); err != nil {
				a.log.Fatal().Err(err).Msg("Updating transaction failed")
			}
			fmt.Println("Transaction updated.")
			return
		}
		tx, err := a.transactions.Create(ctx, user, in)
		if err != nil {
			a.log.Fatal().Err(err).Msg("Creating transaction failed")
		}
		fmt.Printf("Created transaction %s\n", tx.ID)
	case *del != "":
		if err := a.transactions.Delete(ctx, user, *del); err != nil {
			a.log.Fatal().Err(err).Msg("Deleting transaction failed")
		}
		fmt.Println("Transaction deleted.")
	default:
		if *balanceID == "" {
			a.log.Fatal().Msg("Error: -balance is required")
		}
		txs, err := a.transactions.List(ctx, user, *balanceID, storage.Sort{Field: *sortField, Order: *order})
		if err != nil {
			a.log.Fatal().Err(err).Msg("Listing transactions failed")
		}
		for _, t := range txs {
			fmt.Printf("%s  %s  %-24s %-20s %12s\n",
				t.ID, t.Date.Format("2006-01-02"), t.Name, t.Category, t.Amount.StringFixed(2))
		}
	}
}

func runTotal(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("total", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	total, err := a.aggregate.Total(ctx, a.userID())
	if err != nil {
		a.log.Fatal().Err(err).Msg("Computing total failed")
	}
	fmt.Printf("%s %s\n", total.StringFixed(2), rates.ReferenceCode)
}

func runReport(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	user := a.userID()
	profits, err := a.aggregate.Profits(ctx, user)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Computing profits failed")
	}
	losses, err := a.aggregate.Losses(ctx, user)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Computing losses failed")
	}
	fmt.Printf("Profits: %s %s\n", profits.StringFixed(2), rates.ReferenceCode)
	fmt.Printf("Losses:  %s %s\n", losses.StringFixed(2), rates.ReferenceCode)
}

func runImport(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	balanceID := fs.String("balance", "", "Balance ID to import into")
	file := fs.String("file", "", "Path to the bank export file")
	fs.Parse(os.Args[2:])

	if *balanceID == "" || *file == "" {
		a.log.Fatal().Msg("Usage: fintrack import -balance ID -file PATH")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Reading file failed")
	}

	n, err := a.importer.Import(ctx, a.userID(), *balanceID, *file, data)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Import failed")
	}
	fmt.Printf("Imported %d transactions.\n", n)
}

func runRates(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("rates", flag.ExitOnError)
	search := fs.String("search", "", "Filter by alpha code or name")
	fs.Parse(os.Args[2:])

	currencies, err := a.rates.List(ctx, *search)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Listing rates failed")
	}
	for _, c := range currencies {
		fmt.Printf("%-8s %-32s %s\n", c.AlphaCode, c.Name, c.Rate)
	}
}

func runRefreshRates(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("refresh-rates", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	if err := a.rates.Refresh(ctx); err != nil {
		a.log.Fatal().Err(err).Msg("Refreshing rates failed")
	}
	fmt.Println("Rates refreshed.")
}

func runLink(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	token := fs.String("token", "", "Bank feed token")
	watch := fs.String("watch", "", "Feed account ID to start watching")
	unwatch := fs.String("unwatch", "", "Feed account ID to stop watching")
	unlink := fs.Bool("unlink", false, "Remove the link and its accounts")
	fs.Parse(os.Args[2:])

	user := a.userID()
	switch {
	case *token != "":
		accounts, err := a.feed.Link(ctx, user, *token)
		if err != nil {
			a.log.Fatal().Err(err).Msg("Linking bank feed failed")
		}
		fmt.Println("Linked. Accounts:")
		for _, acc := range accounts {
			fmt.Printf("%s  %-24s %12s\n", acc.ID, acc.Name, acc.Amount.StringFixed(2))
		}
	case *watch != "":
		if err := a.feed.Watch(ctx, user, *watch, true); err != nil {
			a.log.Fatal().Err(err).Msg("Watching account failed")
		}
		fmt.Println("Account is now watched.")
	case *unwatch != "":
		if err := a.feed.Watch(ctx, user, *unwatch, false); err != nil {
			a.log.Fatal().Err(err).Msg("Unwatching account failed")
		}
		fmt.Println("Account is no longer watched.")
	case *unlink:
		if err := a.feed.Unlink(ctx, user); err != nil {
			a.log.Fatal().Err(err).Msg("Unlinking bank feed failed")
		}
		fmt.Println("Bank feed unlinked.")
	default:
		accounts, err := a.feed.Accounts(ctx, user)
		if err != nil {
			a.log.Fatal().Err(err).Msg("Listing feed accounts failed")
		}
		for _, acc := range accounts {
			watched := " "
			if acc.Watch {
				watched = "*"
			}
			fmt.Printf("%s %s  %-24s %12s\n", watched, acc.ID, acc.Name, acc.Amount.StringFixed(2))
		}
	}
}

func runSync(ctx context.Context, a *app) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	if err := a.feed.SyncIfStale(ctx, a.userID()); err != nil {
		a.log.Fatal().Err(err).Msg("Syncing bank feed failed")
	}
	fmt.Println("Sync complete.")
}

func parseDecimal(log zerolog.Logger, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatal().Str("value", s).Msg("Error: amount is not a valid number")
	}
	return d
}

// parseDate returns the zero time for an empty flag; creates default
// it to now and updates keep the stored date.
func parseDate(log zerolog.Logger, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Fatal().Str("value", s).Msg("Error: date must be YYYY-MM-DD")
	}
	return t
}
