package workspace

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio is a column of the matrix. ID never changes; Name is a unique
// display attribute.
type Portfolio struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type assetRow struct {
	ticker  string
	weights map[uuid.UUID]float64
}

// Matrix holds the asset rows, the portfolio columns and the weight at
// every intersection. Every row carries an entry for every portfolio.
type Matrix struct {
	assets        []assetRow
	portfolios    []Portfolio
	maxPortfolios int
}

// NewMatrix returns an empty matrix. maxPortfolios <= 0 means no limit.
func NewMatrix(maxPortfolios int) *Matrix {
	return &Matrix{maxPortfolios: maxPortfolios}
}

// DefaultMatrix returns the starting layout: QQQ and SOXX, each held
// entirely by one of two portfolios.
func DefaultMatrix(maxPortfolios int) *Matrix {
	m := NewMatrix(maxPortfolios)
	p1 := m.appendPortfolio("Portfolio 1")
	p2 := m.appendPortfolio("Portfolio 2")
	m.AddAsset()
	m.AddAsset()
	m.assets[0].ticker = "QQQ"
	m.assets[0].weights[p1.ID] = 100
	m.assets[1].ticker = "SOXX"
	m.assets[1].weights[p2.ID] = 100
	return m
}

// MaxPortfolios is the configured column limit, 0 when unlimited.
func (m *Matrix) MaxPortfolios() int { return m.maxPortfolios }

// Len is the number of asset rows.
func (m *Matrix) Len() int { return len(m.assets) }

// Portfolios returns the columns in order.
func (m *Matrix) Portfolios() []Portfolio {
	out := make([]Portfolio, len(m.portfolios))
	copy(out, m.portfolios)
	return out
}

// Ticker returns the ticker of row index.
func (m *Matrix) Ticker(index int) (string, error) {
	if err := m.checkIndex(index); err != nil {
		return "", err
	}
	return m.assets[index].ticker, nil
}

// Weight returns the weight of row index under the named portfolio.
func (m *Matrix) Weight(index int, portfolio string) (float64, error) {
	if err := m.checkIndex(index); err != nil {
		return 0, err
	}
	p, err := m.lookup(portfolio)
	if err != nil {
		return 0, err
	}
	return m.assets[index].weights[p.ID], nil
}

// AddAsset appends a blank row with a zero weight under every portfolio and
// returns its index.
func (m *Matrix) AddAsset() int {
	row := assetRow{weights: make(map[uuid.UUID]float64, len(m.portfolios))}
	for _, p := range m.portfolios {
		row.weights[p.ID] = 0
	}
	m.assets = append(m.assets, row)
	return len(m.assets) - 1
}

// RemoveAsset deletes row index together with its weights.
func (m *Matrix) RemoveAsset(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.assets = append(m.assets[:index], m.assets[index+1:]...)
	return nil
}

// SetTicker stores text upper-cased on row index.
func (m *Matrix) SetTicker(index int, text string) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.assets[index].ticker = strings.ToUpper(text)
	return nil
}

// AddPortfolio appends "Portfolio N" with zero weights on every row.
func (m *Matrix) AddPortfolio() (Portfolio, error) {
	return m.AddNamedPortfolio("")
}

// AddNamedPortfolio appends a portfolio called name, trimmed. A blank name
// falls back to "Portfolio N". Nothing is added when the matrix is full or
// the name is taken.
func (m *Matrix) AddNamedPortfolio(name string) (Portfolio, error) {
	if m.maxPortfolios > 0 && len(m.portfolios) >= m.maxPortfolios {
		return Portfolio{}, &CapacityError{Max: m.maxPortfolios}
	}
	if name = strings.TrimSpace(name); name != "" {
		if m.find(name) >= 0 {
			return Portfolio{}, invalid(ErrPortfolioNameTaken, "%q is already in use", name)
		}
		return m.appendPortfolio(name), nil
	}
	n := len(m.portfolios) + 1
	name = fmt.Sprintf("Portfolio %d", n)
	for m.find(name) >= 0 {
		n++
		name = fmt.Sprintf("Portfolio %d", n)
	}
	return m.appendPortfolio(name), nil
}

func (m *Matrix) appendPortfolio(name string) Portfolio {
	p := Portfolio{ID: uuid.New(), Name: name}
	m.portfolios = append(m.portfolios, p)
	for i := range m.assets {
		m.assets[i].weights[p.ID] = 0
	}
	return p
}

// RenamePortfolio changes a display name. Weights are keyed by id so every
// row keeps its value.
func (m *Matrix) RenamePortfolio(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if oldName == newName {
		return nil
	}
	i := m.find(oldName)
	if i < 0 {
		return fmt.Errorf("%q: %w", oldName, ErrPortfolioNotFound)
	}
	if newName == "" {
		return &ValidationError{Portfolio: oldName, Err: ErrBlankName}
	}
	if m.find(newName) >= 0 {
		return &ValidationError{Portfolio: oldName, Message: fmt.Sprintf("%q is already in use", newName), Err: ErrPortfolioNameTaken}
	}
	m.portfolios[i].Name = newName
	return nil
}

// RemovePortfolio drops a column and its weights.
func (m *Matrix) RemovePortfolio(name string) error {
	i := m.find(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, ErrPortfolioNotFound)
	}
	id := m.portfolios[i].ID
	m.portfolios = append(m.portfolios[:i], m.portfolios[i+1:]...)
	for r := range m.assets {
		delete(m.assets[r].weights, id)
	}
	return nil
}

// SetWeight stores value for row index under portfolio. Negative and
// non-finite values are stored as 0; there is no upper bound.
func (m *Matrix) SetWeight(index int, portfolio string, value float64) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	p, err := m.lookup(portfolio)
	if err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		value = 0
	}
	m.assets[index].weights[p.ID] = value
	return nil
}

// SetWeightText parses user input; anything non-numeric counts as 0.
func (m *Matrix) SetWeightText(index int, portfolio, text string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		v = 0
	}
	return m.SetWeight(index, portfolio, v)
}

// ClearPortfolioWeights zeroes every weight held by the named portfolio.
func (m *Matrix) ClearPortfolioWeights(name string) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	for i := range m.assets {
		m.assets[i].weights[p.ID] = 0
	}
	return nil
}

// ClearAllTickers blanks every ticker, keeping rows and weights.
func (m *Matrix) ClearAllTickers() {
	for i := range m.assets {
		m.assets[i].ticker = ""
	}
}

// Total is the weight sum of one portfolio.
type Total struct {
	Portfolio string          `json:"portfolio"`
	Sum       decimal.Decimal `json:"sum"`
	Balanced  bool            `json:"balanced"`
}

var hundred = decimal.NewFromInt(100)

// Totals sums each portfolio's column. Balanced means exactly 100.
func (m *Matrix) Totals() []Total {
	out := make([]Total, 0, len(m.portfolios))
	for _, p := range m.portfolios {
		sum := decimal.Zero
		for _, row := range m.assets {
			sum = sum.Add(decimal.NewFromFloat(row.weights[p.ID]))
		}
		out = append(out, Total{Portfolio: p.Name, Sum: sum, Balanced: sum.Equal(hundred)})
	}
	return out
}

func (m *Matrix) checkIndex(index int) error {
	if index < 0 || index >= len(m.assets) {
		return invalid(ErrIndexOutOfRange, "asset index %d out of range (have %d)", index, len(m.assets))
	}
	return nil
}

func (m *Matrix) find(name string) int {
	for i, p := range m.portfolios {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (m *Matrix) lookup(name string) (Portfolio, error) {
	i := m.find(name)
	if i < 0 {
		return Portfolio{}, fmt.Errorf("%q: %w", name, ErrPortfolioNotFound)
	}
	return m.portfolios[i], nil
}
