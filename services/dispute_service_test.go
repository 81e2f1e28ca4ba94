package services

import (
	"testing"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/jobs"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/google/uuid"
)

func (f *fixture) report(t *testing.T, itemID uuid.UUID) *models.Report {
	t.Helper()
	r, err := f.disputes.FileReport(f.ctx, f.customer, itemID, "trainer never showed up")
	if err != nil {
		t.Fatalf("FileReport: %v", err)
	}
	return r
}

func TestFileReportRules(t *testing.T) {
	f := newFixture(t)
	item := serviceItem(f.paidOrder(t, f.courseLine(1)))

	if _, err := f.disputes.FileReport(f.ctx, f.gymOwner, item.ID, "fraud"); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("report by non-customer err = %v", err)
	}
	if _, err := f.disputes.FileReport(f.ctx, f.customer, item.ID, "  "); !apperrors.Is(err, apperrors.KindDataValidationFailed) {
		t.Fatalf("blank reason err = %v", err)
	}

	r := f.report(t, item.ID)
	if r.ReportedUserID == nil || *r.ReportedUserID != f.gymOwner.UserID {
		t.Fatalf("reported user = %v, want gym owner", r.ReportedUserID)
	}
	if _, err := f.disputes.FileReport(f.ctx, f.customer, item.ID, "again"); !apperrors.Is(err, apperrors.KindDuplicate) {
		t.Fatalf("second pending report err = %v", err)
	}

	unpaid := f.order(t, "", f.packageLine(1))
	if _, err := f.disputes.FileReport(f.ctx, f.customer, unpaid.Items[0].ID, "fraud"); !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("report on unpaid order err = %v", err)
	}
}

func TestConfirmFraudReportBeforeDistribution(t *testing.T) {
	f := newFixture(t)
	item := serviceItem(f.paidOrder(t, f.courseLine(1)))
	r := f.report(t, item.ID)

	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.customer, r.ID, ""); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("non-admin confirm err = %v", err)
	}

	confirmed, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, r.ID, "verified with gym")
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.Status != models.ReportStatusConfirmed || confirmed.ResolvedBy == nil || *confirmed.ResolvedBy != f.admin.UserID {
		t.Fatalf("report = %+v", confirmed)
	}
	if confirmed.ResolutionNote == nil || *confirmed.ResolutionNote != "verified with gym" {
		t.Fatalf("resolution note = %v", confirmed.ResolutionNote)
	}

	if !f.scheduler.wasCancelled(jobs.GroupDistributeProfit, item.ID) {
		t.Fatal("distribution job was not cancelled")
	}
	w := f.wallet(t, f.gymOwner)
	assertDecimal(t, "pending balance", w.PendingBalance, "0")
	assertDecimal(t, "available balance", w.AvailableBalance, "0")

	deductions := f.txsOf(t, item.ID, models.TransactionTypePendingDeduction)
	if len(deductions) != 1 {
		t.Fatalf("%d PendingDeduction txs, want 1", len(deductions))
	}
	assertDecimal(t, "deduction", deductions[0].Amount, "-425000")
	if f.txsOf(t, item.ID, models.TransactionTypePendingProfit)[0].Status != models.TransactionStatusFailed {
		t.Fatal("pending profit should be marked failed after reversal")
	}
	if !f.item(t, item.ID).IsRefunded {
		t.Fatal("item not marked refunded")
	}

	ok, err := f.settlement.DistributeProfit(f.ctx, item.ID)
	if err != nil || ok {
		t.Fatalf("distribution after refund = %v, %v", ok, err)
	}
	if n := len(f.txsOf(t, item.ID, models.TransactionTypeDistributeProfit)); n != 0 {
		t.Fatalf("%d DistributeProfit txs after reversal", n)
	}

	sent := f.notifier.ofType(notifications.TypeReportResolved)
	if len(sent) != 1 || len(sent[0].userIDs) != 2 {
		t.Fatalf("report notifications = %+v", sent)
	}
	if f.publisher.count(events.EventProfitReversed) != 1 {
		t.Fatal("ProfitReversed event not published")
	}
}

func TestConfirmFraudReportAfterDistributionNetsOut(t *testing.T) {
	f := newFixture(t)
	item := serviceItem(f.paidOrder(t, f.packageLine(1)))
	r := f.report(t, item.ID)

	if ok, err := f.settlement.DistributeProfit(f.ctx, item.ID); err != nil || !ok {
		t.Fatalf("DistributeProfit = %v, %v", ok, err)
	}
	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, r.ID, ""); err != nil {
		t.Fatal(err)
	}

	w := f.wallet(t, f.trainer)
	assertDecimal(t, "pending balance", w.PendingBalance, "-425000")
	assertDecimal(t, "available balance", w.AvailableBalance, "425000")
	assertDecimal(t, "net balance", w.PendingBalance.Add(w.AvailableBalance), "0")
}

func TestConfirmFraudReportOnProduct(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t, f.productLine(2))
	r := f.report(t, o.Items[0].ID)
	if r.ReportedUserID != nil {
		t.Fatal("products have no reported merchant")
	}

	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, r.ID, ""); err != nil {
		t.Fatal(err)
	}
	refunds := f.txsOf(t, o.Items[0].ID, models.TransactionTypeProductRefund)
	if len(refunds) != 1 {
		t.Fatalf("%d ProductRefund txs, want 1", len(refunds))
	}
	assertDecimal(t, "refund", refunds[0].Amount, "-240000")
	if refunds[0].WalletID != nil {
		t.Fatal("product refund must not touch a wallet")
	}
	if f.publisher.count(events.EventProductRefunded) != 1 {
		t.Fatal("ProductRefunded event not published")
	}
}

func TestConfirmFraudReportFailsFast(t *testing.T) {
	f := newFixture(t)
	item := serviceItem(f.paidOrder(t, f.courseLine(1)))
	r := f.report(t, item.ID)
	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, r.ID, ""); err != nil {
		t.Fatal(err)
	}

	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, r.ID, ""); !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("confirming twice err = %v", err)
	}

	// A second report slipped in before the refund must not refund again.
	late := &models.Report{ReporterID: f.customer.UserID, OrderItemID: item.ID, Reason: "x", Status: models.ReportStatusPending}
	must(t, f.store.Reports().Create(f.ctx, late))
	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, late.ID, ""); !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("confirming on a refunded item err = %v", err)
	}
	assertDecimal(t, "pending balance", f.wallet(t, f.gymOwner).PendingBalance, "0")

	stored, err := f.store.Reports().GetByID(f.ctx, late.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.ReportStatusPending {
		t.Fatalf("failed confirmation changed report status to %s", stored.Status)
	}

	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, uuid.New(), ""); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("unknown report err = %v", err)
	}
}

func TestRejectReport(t *testing.T) {
	f := newFixture(t)
	item := serviceItem(f.paidOrder(t, f.courseLine(1)))
	r := f.report(t, item.ID)

	rejected, err := f.disputes.RejectReport(f.ctx, f.admin, r.ID, "no evidence")
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != models.ReportStatusRejected {
		t.Fatalf("status = %s", rejected.Status)
	}
	if f.item(t, item.ID).IsRefunded {
		t.Fatal("rejecting must not refund")
	}
	if _, err := f.disputes.ConfirmFraudReport(f.ctx, f.admin, r.ID, ""); !apperrors.Is(err, apperrors.KindBusiness) {
		t.Fatalf("confirming a rejected report err = %v", err)
	}

	pending, err := f.disputes.ListReports(f.ctx, f.admin, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("%d pending reports, want 0", len(pending))
	}
	if _, err := f.disputes.ListReports(f.ctx, f.customer, ""); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("customer listing err = %v", err)
	}
}
