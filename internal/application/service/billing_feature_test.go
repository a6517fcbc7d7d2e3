package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/enum"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/sangkips/tableside-api/pkg/payment"
	"github.com/shopspring/decimal"
)

type billingWorld struct {
	t        *testing.T
	f        *fixture
	input    *CreateBillInput
	orderIDs []uuid.UUID
	order    *entity.Order
	bill     *entity.Bill
	customer *entity.Customer
	err      error
}

func (w *billingWorld) reset() {
	w.f = newFixture(w.t)
	w.input = &CreateBillInput{CreatedBy: uuid.New()}
	w.orderIDs = nil
	w.order = nil
	w.bill = nil
	w.customer = nil
	w.err = nil
}

func (w *billingWorld) aBillLine(name, price string, qty int) error {
	w.input.Lines = append(w.input.Lines, BillLineInput{Name: name, UnitPrice: dec(price), Quantity: qty})
	return nil
}

func (w *billingWorld) aPercentageDiscount(value string) error {
	w.input.DiscountType = enum.DiscountTypePercentage
	w.input.DiscountValue = dec(value)
	return nil
}

func (w *billingWorld) aTaxOf(value string) error {
	tax := dec(value)
	w.input.TaxPercent = &tax
	return nil
}

func (w *billingWorld) theCustomer(name, phone string) error {
	w.input.Customer = &BillCustomerInput{Name: name, Phone: phone}
	return nil
}

func (w *billingWorld) aTableOrder(name, price string, qty int) error {
	res, err := w.f.orders.CreateOrder(w.f.ctx, &CreateOrderInput{
		Channel: enum.ChannelTable,
		TableID: &w.f.table.ID,
		Lines:   []OrderLineInput{line(name, price, qty)},
	})
	if err != nil {
		return err
	}
	w.order = res.Order
	w.orderIDs = append(w.orderIDs, res.Order.ID)
	return nil
}

func (w *billingWorld) aPickupOrder(method, name, price string, qty int) error {
	res, err := w.f.orders.CreateOrder(w.f.ctx, &CreateOrderInput{
		Channel:       enum.ChannelPickup,
		PaymentMethod: enum.PaymentMethod(method),
		CustomerPhone: strPtr("0700123456"),
		Lines:         []OrderLineInput{line(name, price, qty)},
	})
	if err != nil {
		return err
	}
	w.order = res.Order
	return nil
}

func (w *billingWorld) theCashierBills(paid string) error {
	w.input.AmountPaid = dec(paid)
	w.bill, w.err = w.f.bills.CreateBill(w.f.ctx, w.input)
	return nil
}

func (w *billingWorld) theCashierBillsTableOrders(paid string) error {
	w.input.OrderIDs = w.orderIDs
	return w.theCashierBills(paid)
}

func (w *billingWorld) theCustomerPays(amount string) error {
	customer, err := w.f.ledger.LookupByPhone(w.f.ctx, w.input.Customer.Phone)
	if err != nil {
		return err
	}
	_, w.err = w.f.ledger.RecordDuePayment(w.f.ctx, &RecordDuePaymentInput{
		CustomerID: customer.ID,
		Amount:     dec(amount),
		Method:     enum.PaymentMethodCash,
		ReceivedBy: uuid.New(),
	})
	return nil
}

func (w *billingWorld) theOrderIsMarked(status string) error {
	target, err := enum.ParseOrderStatus(status)
	if err != nil {
		return err
	}
	_, w.err = w.f.orders.TransitionOrder(w.f.ctx, w.order.ID, target)
	return nil
}

func (w *billingWorld) theProviderReports(status string) error {
	return w.f.sandbox.Settle(*w.order.PaymentIntentRef, payment.Status(status))
}

func (w *billingWorld) thePaymentIsReconciled() error {
	_, w.err = w.f.payments.Reconcile(w.f.ctx, w.order.ID)
	return w.err
}

func (w *billingWorld) billAmount(field func(*entity.Bill) decimal.Decimal) func(string) error {
	return func(want string) error {
		if w.err != nil {
			return fmt.Errorf("bill was not created: %w", w.err)
		}
		if got := field(w.bill).StringFixed(2); got != want {
			return fmt.Errorf("expected %s, got %s", want, got)
		}
		return nil
	}
}

func (w *billingWorld) theCustomerOwes(want string) error {
	customer, err := w.f.ledger.LookupByPhone(w.f.ctx, w.input.Customer.Phone)
	if err != nil {
		return err
	}
	if got := customer.DueAmount.StringFixed(2); got != want {
		return fmt.Errorf("expected due %s, got %s", want, got)
	}
	return nil
}

func (w *billingWorld) theRequestFailsWith(kind string) error {
	if w.err == nil {
		return fmt.Errorf("expected %s, got success", kind)
	}
	if got := apperror.KindOf(w.err); string(got) != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, w.err)
	}
	return nil
}

func (w *billingWorld) theOrderStatusIs(want string) error {
	order, err := w.f.orders.GetOrder(w.f.ctx, w.order.ID)
	if err != nil {
		return err
	}
	if order.Status.String() != want {
		return fmt.Errorf("expected status %s, got %s", want, order.Status)
	}
	return nil
}

func (w *billingWorld) theOrderPaymentStatusIs(want string) error {
	order, err := w.f.orders.GetOrder(w.f.ctx, w.order.ID)
	if err != nil {
		return err
	}
	if order.PaymentStatus.String() != want {
		return fmt.Errorf("expected payment status %s, got %s", want, order.PaymentStatus)
	}
	return nil
}

func initializeBillingScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		w := &billingWorld{t: t}

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			w.reset()
			return ctx, nil
		})

		// Given steps
		ctx.Step(`^a bill line "([^"]*)" at (\d+\.\d+) x (\d+)$`, w.aBillLine)
		ctx.Step(`^a (\d+)% percentage discount$`, w.aPercentageDiscount)
		ctx.Step(`^a tax of (\d+)%$`, w.aTaxOf)
		ctx.Step(`^the customer "([^"]*)" with phone "([^"]*)"$`, w.theCustomer)
		ctx.Step(`^a table order of "([^"]*)" at (\d+\.\d+) x (\d+)$`, w.aTableOrder)
		ctx.Step(`^an? (cash|online) pickup order of "([^"]*)" at (\d+\.\d+) x (\d+)$`, w.aPickupOrder)

		// When steps
		ctx.Step(`^the cashier bills it with (\d+\.\d+) paid$`, w.theCashierBills)
		ctx.Step(`^the cashier bills the table orders with (\d+\.\d+) paid$`, w.theCashierBillsTableOrders)
		ctx.Step(`^the customer pays (\d+\.\d+) of their due$`, w.theCustomerPays)
		ctx.Step(`^the order is marked "([^"]*)"$`, w.theOrderIsMarked)
		ctx.Step(`^the provider reports the payment "([^"]*)"$`, w.theProviderReports)
		ctx.Step(`^the payment is reconciled$`, w.thePaymentIsReconciled)

		// Then steps
		ctx.Step(`^the bill subtotal is (\d+\.\d+)$`, w.billAmount(func(b *entity.Bill) decimal.Decimal { return b.Subtotal }))
		ctx.Step(`^the bill discount is (\d+\.\d+)$`, w.billAmount(func(b *entity.Bill) decimal.Decimal { return b.DiscountAmount }))
		ctx.Step(`^the bill tax is (\d+\.\d+)$`, w.billAmount(func(b *entity.Bill) decimal.Decimal { return b.TaxAmount }))
		ctx.Step(`^the bill total is (\d+\.\d+)$`, w.billAmount(func(b *entity.Bill) decimal.Decimal { return b.Total }))
		ctx.Step(`^the change is (\d+\.\d+)$`, w.billAmount(func(b *entity.Bill) decimal.Decimal { return b.ChangeGiven }))
		ctx.Step(`^the bill has (\d+\.\d+) unpaid$`, w.billAmount(func(b *entity.Bill) decimal.Decimal { return b.Unpaid }))
		ctx.Step(`^the customer owes (\d+\.\d+)$`, w.theCustomerOwes)
		ctx.Step(`^the request fails with "([^"]*)"$`, w.theRequestFailsWith)
		ctx.Step(`^the order status is "([^"]*)"$`, w.theOrderStatusIs)
		ctx.Step(`^the order payment status is "([^"]*)"$`, w.theOrderPaymentStatusIs)
	}
}

func TestBillingFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeBillingScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/billing.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
