package ccpricing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/pthm/ccpricing"
)

type selectionTestContext struct {
	catalog  map[string]ccpricing.Product
	orch     *ccpricing.Orchestrator
	snapshot ccpricing.Snapshot
	currency ccpricing.Currency
}

func (c *selectionTestContext) reset() {
	c.catalog = map[string]ccpricing.Product{}
	c.orch = ccpricing.NewOrchestrator(nil)
	c.snapshot = c.orch.Snapshot()
	c.currency = ccpricing.EUR
}

func (c *selectionTestContext) product(name, item string) (ccpricing.Product, error) {
	p, ok := c.catalog[name+"/"+item]
	if !ok {
		return ccpricing.Product{}, fmt.Errorf("unknown catalog item %s/%s", name, item)
	}
	return p, nil
}

func (c *selectionTestContext) aCatalogItemOfProductPriced(item, name, price string, hours int) error {
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.catalog[name+"/"+item] = ccpricing.Product{
		Name: name,
		Item: ccpricing.CatalogItem{Name: item, Price: amount.Div(decimal.NewFromInt(int64(hours)))},
	}
	return nil
}

func (c *selectionTestContext) iAdd(name, item string) error {
	p, err := c.product(name, item)
	if err != nil {
		return err
	}
	c.snapshot = c.orch.Dispatch(ccpricing.AddProduct{Product: p})
	return nil
}

func (c *selectionTestContext) iChangeTheQuantityOf(name, item string, quantity int) error {
	p, err := c.product(name, item)
	if err != nil {
		return err
	}
	c.snapshot = c.orch.Dispatch(ccpricing.ChangeQuantity{Product: p, Quantity: quantity})
	return nil
}

func (c *selectionTestContext) iDelete(name, item string) error {
	p, err := c.product(name, item)
	if err != nil {
		return err
	}
	c.snapshot = c.orch.Dispatch(ccpricing.DeleteQuantity{Product: p})
	return nil
}

func (c *selectionTestContext) theDisplayCurrencyIs(code, rate string) error {
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return err
	}
	c.currency, err = ccpricing.NewCurrency(code, r)
	return err
}

func (c *selectionTestContext) hasQuantity(name, item string, quantity int) error {
	p, err := c.product(name, item)
	if err != nil {
		return err
	}
	e, ok := c.snapshot.Store.Lookup(c.snapshot.Store.Key(p))
	if !ok {
		return fmt.Errorf("expected a live entry for %s/%s", name, item)
	}
	if e.Quantity != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, e.Quantity)
	}
	return nil
}

func (c *selectionTestContext) isTombstoned(name, item string) error {
	p, err := c.product(name, item)
	if err != nil {
		return err
	}
	if !c.snapshot.Store.Tombstoned(c.snapshot.Store.Key(p)) {
		return fmt.Errorf("expected %s/%s to be tombstoned", name, item)
	}
	return nil
}

func (c *selectionTestContext) hasNoSlot(name, item string) error {
	p, err := c.product(name, item)
	if err != nil {
		return err
	}
	if c.snapshot.Store.Has(c.snapshot.Store.Key(p)) {
		return fmt.Errorf("expected no slot for %s/%s", name, item)
	}
	return nil
}

func (c *selectionTestContext) theSelectionIsEmpty() error {
	if !c.snapshot.Store.Empty() {
		return errors.New("expected an empty selection")
	}
	return nil
}

func (c *selectionTestContext) theMonthlyTotalIs(want string) error {
	if got := c.snapshot.Total.String(); got != want {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (c *selectionTestContext) theDisplayedTotalIs(want string) error {
	got := ccpricing.FormatPrice(ccpricing.Convert(c.snapshot.Total, c.currency), c.currency)
	if got != want {
		return fmt.Errorf("expected %q, got %q", want, got)
	}
	return nil
}

func InitializeSelectionScenario(ctx *godog.ScenarioContext) {
	tc := &selectionTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a catalog item "([^"]*)" of product "([^"]*)" priced ([\d.]+) per (\d+) hours$`, tc.aCatalogItemOfProductPriced)
	ctx.Step(`^the display currency is "([^"]*)" at rate ([\d.]+)$`, tc.theDisplayCurrencyIs)

	// When steps
	ctx.Step(`^I add "([^"]*)" "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I change the quantity of "([^"]*)" "([^"]*)" to (-?\d+)$`, tc.iChangeTheQuantityOf)
	ctx.Step(`^I delete "([^"]*)" "([^"]*)"$`, tc.iDelete)

	// Then steps
	ctx.Step(`^"([^"]*)" "([^"]*)" has quantity (\d+)$`, tc.hasQuantity)
	ctx.Step(`^"([^"]*)" "([^"]*)" is tombstoned$`, tc.isTombstoned)
	ctx.Step(`^"([^"]*)" "([^"]*)" has no slot$`, tc.hasNoSlot)
	ctx.Step(`^the selection is empty$`, tc.theSelectionIsEmpty)
	ctx.Step(`^the monthly total is "([^"]*)"$`, tc.theMonthlyTotalIs)
	ctx.Step(`^the displayed total is "([^"]*)"$`, tc.theDisplayedTotalIs)
}

func TestSelectionFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeSelectionScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/selection.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
