package modules

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"droidseed/internal/configure"
)

// Expense seeds the Pro Expense accounting database. Amounts arrive as
// dollar strings and are stored in cents.
type Expense struct {
	base
	now func() time.Time
}

type expenseConfig struct {
	ClearExpenses      bool           `json:"clear_expenses"`
	AddExpenses        []expenseEntry `json:"add_expenses"`
	AddRandomExpenses  bool           `json:"add_random_expenses"`
	RandomExpenseCount *int           `json:"random_expense_count"`
}

type expenseEntry struct {
	Name         string `json:"name"`
	Amount       string `json:"amount"`
	Category     *int   `json:"category"`
	Note         string `json:"note"`
	CreatedDate  int64  `json:"created_date"`
	ModifiedDate int64  `json:"modified_date"`
}

func NewExpense(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Expense{base: newBase("expense", env, raw), now: time.Now}
}

func (m *Expense) Name() string { return "expense" }

func (m *Expense) Configure() error {
	var cfg expenseConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["expense"]

	if err := configure.EnsureAppReady("expense", dev); err != nil {
		return err
	}
	// First launch creates the database; close before touching it directly.
	if err := dev.CloseApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("close after init failed")
	}

	if cfg.ClearExpenses {
		if err := configure.ClearTable(dev, app.DBPath, app.Table); err != nil {
			return err
		}
		m.log.Info().Msg("cleared expense records")
	}

	added := 0
	for _, e := range cfg.AddExpenses {
		cents, err := dollarsToCents(e.Amount)
		if err != nil {
			m.log.Error().Err(err).Str("name", e.Name).Msg("invalid amount, skipping")
			continue
		}
		created := e.CreatedDate
		if created == 0 {
			created = m.now().UnixMilli()
		}
		modified := e.ModifiedDate
		if modified == 0 {
			modified = created
		}
		if err := m.insert(e.Name, cents, intDefault(e.Category, 1), e.Note, created, modified); err != nil {
			m.log.Error().Err(err).Str("name", e.Name).Msg("add expense failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("expenses", added).Msg("expense records added")
	}

	if cfg.AddRandomExpenses {
		m.addRandom(intDefault(cfg.RandomExpenseCount, 5))
	}

	if err := dev.LaunchApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("expense app relaunch failed")
	}
	return nil
}

// dollarsToCents converts "35.79" to 3579. Empty means zero.
func dollarsToCents(amount string) (int64, error) {
	if amount == "" {
		return 0, nil
	}
	dollars, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, err
	}
	return int64(dollars*100 + 0.5), nil
}

func (m *Expense) insert(name string, cents int64, category int, note string, created, modified int64) error {
	app := configure.Apps["expense"]
	stmt := configure.InsertStatement(app.Table,
		[]string{"name", "amount", "category", "note", "created_date", "modified_date"},
		[]any{name, cents, category, note, created, modified})
	return m.dev().ExecuteSQL(app.DBPath, stmt)
}

var randomExpenseNames = []string{"Groceries", "Dinner", "Coffee", "Movie Tickets", "Gas", "Parking"}

func (m *Expense) addRandom(count int) {
	added := 0
	for i := 0; i < count; i++ {
		stamp := m.now().UnixMilli() - rand.Int63n(30*24*time.Hour.Milliseconds())
		err := m.insert(
			randomExpenseNames[rand.Intn(len(randomExpenseNames))],
			rand.Int63n(9900)+100, // $1.00 to $100.00
			rand.Intn(5)+1,
			"",
			stamp, stamp)
		if err != nil {
			m.log.Error().Err(err).Msg("random expense failed")
			continue
		}
		added++
	}
	m.log.Info().Int("expenses", added).Msg("random expense records added")
}
