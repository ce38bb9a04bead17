package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/shopspring/decimal"
)

// End-to-end billing regression: jobs -> invoice generation (numbering, GST
// totals, job claiming) -> payments (balance, status derivation) -> overdue
// sweep -> client statement.
//
// Run (requires Docker): INTEGRATION_TESTS=1 go test ./models -run BillingLifecycle -v

func TestBillingLifecycle(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "fleetmanager_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	operator, err := models.Register(ctx, &models.NewUser{
		Name:     "Test Operator",
		Email:    "operator@test.local",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	ctx = utils.SetUserIdInContext(ctx, operator.ID)

	client, err := models.CreateClient(ctx, &models.NewClient{Name: "Acme Transporters"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	vehicleType, err := models.CreateVehicleType(ctx, &models.NewVehicleType{Name: "Truck"})
	if err != nil {
		t.Fatalf("CreateVehicleType: %v", err)
	}
	vehicle, err := models.CreateVehicle(ctx, &models.NewVehicle{
		RegistrationNo: "MH12AB1234",
		VehicleTypeId:  vehicleType.ID,
	})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	driver, err := models.CreateDriver(ctx, &models.NewDriver{
		Name:      "Ravi",
		LicenseNo: "DL-1420110012345",
	})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	}
	newJob := func(date time.Time, amount string, status models.JobStatus) *models.Job {
		t.Helper()
		job, err := models.CreateJob(ctx, &models.NewJob{
			ClientId:  client.ID,
			DriverId:  driver.ID,
			VehicleId: vehicle.ID,
			Date:      date,
			Amount:    decimal.RequireFromString(amount),
			Status:    status,
		})
		if err != nil {
			t.Fatalf("CreateJob(%s): %v", amount, err)
		}
		return job
	}

	jobA := newJob(day(2025, time.June, 2), "1000", models.JobStatusCompleted)
	jobB := newJob(day(2025, time.June, 15), "500", models.JobStatusCompleted)
	pending := newJob(day(2025, time.June, 20), "900", models.JobStatusPending)
	outside := newJob(day(2025, time.July, 5), "700", models.JobStatusCompleted)

	// --- invoice generation ---
	invoice, err := models.GenerateInvoice(ctx, &models.NewInvoice{
		ClientId:  client.ID,
		StartDate: "2025-06-01",
		EndDate:   "2025-06-30",
	})
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	if invoice.InvoiceNumber != "INV/25-26/1" {
		t.Errorf("invoice number = %q, want INV/25-26/1", invoice.InvoiceNumber)
	}
	if !invoice.Subtotal.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("subtotal = %s, want 1500", invoice.Subtotal)
	}
	if !invoice.Tax.Equal(decimal.RequireFromString("270")) {
		t.Errorf("tax = %s, want 270", invoice.Tax)
	}
	if !invoice.TotalAmount.Equal(decimal.RequireFromString("1770")) {
		t.Errorf("total = %s, want 1770", invoice.TotalAmount)
	}
	if !invoice.BalanceAmount.Equal(invoice.TotalAmount) {
		t.Errorf("balance = %s, want %s", invoice.BalanceAmount, invoice.TotalAmount)
	}
	if invoice.Status != models.InvoiceStatusSent {
		t.Errorf("status = %s, want SENT", invoice.Status)
	}
	// the row keeps the dates as supplied, not the selection bound
	if !invoice.StartDate.Equal(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date stored as %s, want 2025-06-01T00:00:00Z", invoice.StartDate)
	}
	if !invoice.EndDate.Equal(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end date stored as %s, want 2025-06-30T00:00:00Z", invoice.EndDate)
	}
	if len(invoice.Jobs) != 2 {
		t.Fatalf("invoice has %d jobs, want 2", len(invoice.Jobs))
	}

	// only completed, in-range, unbilled jobs were claimed
	for _, id := range []int{jobA.ID, jobB.ID} {
		j, err := models.GetJob(ctx, id)
		if err != nil {
			t.Fatalf("GetJob(%d): %v", id, err)
		}
		if j.InvoiceId == nil || *j.InvoiceId != invoice.ID {
			t.Errorf("job %d not linked to invoice %d", id, invoice.ID)
		}
	}
	for _, id := range []int{pending.ID, outside.ID} {
		j, err := models.GetJob(ctx, id)
		if err != nil {
			t.Fatalf("GetJob(%d): %v", id, err)
		}
		if j.InvoiceId != nil {
			t.Errorf("job %d unexpectedly claimed", id)
		}
	}

	// invoiced jobs are frozen
	if _, err := models.UpdateJob(ctx, jobA.ID, &models.NewJob{
		ClientId:  client.ID,
		DriverId:  driver.ID,
		VehicleId: vehicle.ID,
		Date:      day(2025, time.June, 2),
		Amount:    decimal.RequireFromString("2000"),
		Status:    models.JobStatusCompleted,
	}); err == nil {
		t.Error("UpdateJob on an invoiced job should fail")
	}
	if _, err := models.DeleteJob(ctx, jobA.ID); err == nil {
		t.Error("DeleteJob on an invoiced job should fail")
	}

	// same window again: everything billable is already claimed
	if _, err := models.GenerateInvoice(ctx, &models.NewInvoice{
		ClientId:  client.ID,
		StartDate: "2025-06-01",
		EndDate:   "2025-06-30",
	}); !errors.Is(err, utils.ErrorNoUnbilledJobs) {
		t.Errorf("regenerate = %v, want ErrorNoUnbilledJobs", err)
	}

	// sequence advances within the fiscal year; a job on the last day of
	// the window is still selected
	endOfWindow := newJob(day(2025, time.July, 31), "300", models.JobStatusCompleted)
	second, err := models.GenerateInvoice(ctx, &models.NewInvoice{
		ClientId:  client.ID,
		StartDate: "2025-07-01",
		EndDate:   "2025-07-31",
	})
	if err != nil {
		t.Fatalf("GenerateInvoice(second): %v", err)
	}
	if second.InvoiceNumber != "INV/25-26/2" {
		t.Errorf("second invoice number = %q, want INV/25-26/2", second.InvoiceNumber)
	}
	boundary, err := models.GetJob(ctx, endOfWindow.ID)
	if err != nil {
		t.Fatalf("GetJob(endOfWindow): %v", err)
	}
	if boundary.InvoiceId == nil || *boundary.InvoiceId != second.ID {
		t.Errorf("job dated on the window's last day was not claimed by invoice %d", second.ID)
	}

	// sequence resets in the next fiscal year
	newJob(day(2026, time.April, 10), "800", models.JobStatusCompleted)
	nextFY, err := models.GenerateInvoice(ctx, &models.NewInvoice{
		ClientId:  client.ID,
		StartDate: "2026-04-01",
		EndDate:   "2026-04-30",
	})
	if err != nil {
		t.Fatalf("GenerateInvoice(next FY): %v", err)
	}
	if nextFY.InvoiceNumber != "INV/26-27/1" {
		t.Errorf("next FY invoice number = %q, want INV/26-27/1", nextFY.InvoiceNumber)
	}

	// numbering is per tenant
	other, err := models.Register(ctx, &models.NewUser{
		Name:     "Other Operator",
		Email:    "other@test.local",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register(other): %v", err)
	}
	otherCtx := utils.SetUserIdInContext(context.Background(), other.ID)
	otherClient, err := models.CreateClient(otherCtx, &models.NewClient{Name: "Acme Transporters"})
	if err != nil {
		t.Fatalf("CreateClient(other): %v", err)
	}
	otherType, err := models.CreateVehicleType(otherCtx, &models.NewVehicleType{Name: "Truck"})
	if err != nil {
		t.Fatalf("CreateVehicleType(other): %v", err)
	}
	otherVehicle, err := models.CreateVehicle(otherCtx, &models.NewVehicle{RegistrationNo: "KA01ZZ9999", VehicleTypeId: otherType.ID})
	if err != nil {
		t.Fatalf("CreateVehicle(other): %v", err)
	}
	otherDriver, err := models.CreateDriver(otherCtx, &models.NewDriver{Name: "Suresh", LicenseNo: "KA-0320150098765"})
	if err != nil {
		t.Fatalf("CreateDriver(other): %v", err)
	}
	if _, err := models.CreateJob(otherCtx, &models.NewJob{
		ClientId:  otherClient.ID,
		DriverId:  otherDriver.ID,
		VehicleId: otherVehicle.ID,
		Date:      day(2025, time.June, 5),
		Amount:    decimal.RequireFromString("300"),
		Status:    models.JobStatusCompleted,
	}); err != nil {
		t.Fatalf("CreateJob(other): %v", err)
	}
	otherInvoice, err := models.GenerateInvoice(otherCtx, &models.NewInvoice{
		ClientId:  otherClient.ID,
		StartDate: "2025-06-01",
		EndDate:   "2025-06-30",
	})
	if err != nil {
		t.Fatalf("GenerateInvoice(other): %v", err)
	}
	if otherInvoice.InvoiceNumber != "INV/25-26/1" {
		t.Errorf("other tenant invoice number = %q, want INV/25-26/1", otherInvoice.InvoiceNumber)
	}
	// tenants cannot see each other's invoices
	if _, err := models.GetInvoice(otherCtx, invoice.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Errorf("cross-tenant GetInvoice = %v, want ErrorRecordNotFound", err)
	}

	// --- payments ---
	pay := func(c context.Context, invoiceId, clientId int, amount string, method models.PaymentMethod, refNo string) (*models.Payment, error) {
		return models.RecordPayment(c, &models.NewPayment{
			InvoiceId:     invoiceId,
			ClientId:      clientId,
			Amount:        decimal.RequireFromString(amount),
			PaymentMethod: method,
			ReferenceNo:   refNo,
		})
	}

	if _, err := pay(ctx, invoice.ID, client.ID, "2000", models.PaymentMethodCash, ""); !errors.Is(err, utils.ErrorExceedsBalance) {
		t.Errorf("overpayment = %v, want ErrorExceedsBalance", err)
	}
	if _, err := pay(ctx, invoice.ID, client.ID, "-5", models.PaymentMethodCash, ""); !errors.Is(err, utils.ErrorInvalidAmount) {
		t.Errorf("negative amount = %v, want ErrorInvalidAmount", err)
	}
	if _, err := pay(ctx, invoice.ID, client.ID, "0", models.PaymentMethodCash, ""); !errors.Is(err, utils.ErrorInvalidInput) {
		t.Errorf("zero amount = %v, want ErrorInvalidInput", err)
	}
	if _, err := pay(ctx, invoice.ID, client.ID, "100", models.PaymentMethodUpi, ""); !errors.Is(err, utils.ErrorInvalidInput) {
		t.Errorf("UPI without reference = %v, want ErrorInvalidInput", err)
	}
	if _, err := pay(ctx, invoice.ID, otherClient.ID, "100", models.PaymentMethodCash, ""); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Errorf("wrong client = %v, want ErrorRecordNotFound", err)
	}

	if _, err := pay(ctx, invoice.ID, client.ID, "770", models.PaymentMethodUpi, "UPI-001"); err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	got, err := models.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice after partial: %v", err)
	}
	if got.Status != models.InvoiceStatusPartial {
		t.Errorf("status after partial = %s, want PARTIAL", got.Status)
	}
	if !got.BalanceAmount.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("balance after partial = %s, want 1000", got.BalanceAmount)
	}

	if _, err := pay(ctx, invoice.ID, client.ID, "1000", models.PaymentMethodBankTransfer, "NEFT-42"); err != nil {
		t.Fatalf("settling payment: %v", err)
	}
	got, err = models.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice after settle: %v", err)
	}
	if got.Status != models.InvoiceStatusPaid {
		t.Errorf("status after settle = %s, want PAID", got.Status)
	}
	if !got.BalanceAmount.IsZero() {
		t.Errorf("balance after settle = %s, want 0", got.BalanceAmount)
	}
	if !got.PaidAmount.Equal(got.TotalAmount) {
		t.Errorf("paid %s != total %s", got.PaidAmount, got.TotalAmount)
	}
	// settled invoices accept nothing further
	if _, err := pay(ctx, invoice.ID, client.ID, "1", models.PaymentMethodCash, ""); !errors.Is(err, utils.ErrorExceedsBalance) {
		t.Errorf("payment on settled invoice = %v, want ErrorExceedsBalance", err)
	}

	payments, err := models.GetPaymentsForInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetPaymentsForInvoice: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("payment count = %d, want 2", len(payments))
	}

	// --- overdue sweep ---
	db := config.GetDB()
	past := time.Now().AddDate(0, 0, -1)
	if err := db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id IN ?", []int{invoice.ID, second.ID}).
		Update("due_date", past).Error; err != nil {
		t.Fatalf("backdate due dates: %v", err)
	}
	updated, err := models.MarkOverdueInvoices(ctx, time.Now())
	if err != nil {
		t.Fatalf("MarkOverdueInvoices: %v", err)
	}
	if updated != 1 {
		t.Errorf("sweep updated %d invoices, want 1 (only the unpaid one)", updated)
	}
	got, err = models.GetInvoice(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetInvoice(second): %v", err)
	}
	if got.Status != models.InvoiceStatusOverdue {
		t.Errorf("second invoice status = %s, want OVERDUE", got.Status)
	}
	paid, err := models.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice(paid): %v", err)
	}
	if paid.Status != models.InvoiceStatusPaid {
		t.Errorf("sweep touched a PAID invoice: %s", paid.Status)
	}

	// overdue invoices still accept payments
	if _, err := pay(ctx, second.ID, client.ID, "100", models.PaymentMethodCash, ""); err != nil {
		t.Fatalf("payment on overdue invoice: %v", err)
	}
	got, err = models.GetInvoice(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetInvoice(second after payment): %v", err)
	}
	if got.Status != models.InvoiceStatusPartial {
		t.Errorf("overdue after payment = %s, want PARTIAL", got.Status)
	}

	// --- client statement ---
	statement, err := models.GetClientStatement(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetClientStatement: %v", err)
	}
	wantInvoiced := decimal.Zero
	wantPaid := decimal.Zero
	wantOutstanding := decimal.Zero
	for _, inv := range statement.Invoices {
		wantInvoiced = wantInvoiced.Add(inv.TotalAmount)
		wantPaid = wantPaid.Add(inv.PaidAmount)
		wantOutstanding = wantOutstanding.Add(inv.BalanceAmount)
	}
	if !statement.TotalInvoiced.Equal(wantInvoiced) {
		t.Errorf("statement invoiced = %s, want %s", statement.TotalInvoiced, wantInvoiced)
	}
	if !statement.TotalPaid.Equal(wantPaid) {
		t.Errorf("statement paid = %s, want %s", statement.TotalPaid, wantPaid)
	}
	if !statement.TotalOutstanding.Equal(wantOutstanding) {
		t.Errorf("statement outstanding = %s, want %s", statement.TotalOutstanding, wantOutstanding)
	}
	if !statement.TotalOutstanding.Equal(statement.TotalInvoiced.Sub(statement.TotalPaid)) {
		t.Errorf("outstanding %s != invoiced %s - paid %s", statement.TotalOutstanding, statement.TotalInvoiced, statement.TotalPaid)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "fleetmanager_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	if _, err := models.Register(ctx, &models.NewUser{
		Name:     "Rotation",
		Email:    "rotate@test.local",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	info, err := models.Login(ctx, "rotate@test.local", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := models.Login(ctx, "rotate@test.local", "wrongpass"); err == nil {
		t.Error("Login with wrong password should fail")
	}

	rotated, err := models.Refresh(ctx, info.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == info.RefreshToken {
		t.Error("rotation returned the same refresh token")
	}

	// the rotated-out token is on the denylist now
	if _, err := models.Refresh(ctx, info.RefreshToken); !errors.Is(err, utils.ErrorUnauthorized) {
		t.Errorf("replayed refresh = %v, want ErrorUnauthorized", err)
	}

	// an access token is not accepted as a refresh token
	if _, err := models.Refresh(ctx, rotated.AccessToken); !errors.Is(err, utils.ErrorUnauthorized) {
		t.Errorf("refresh with access token = %v, want ErrorUnauthorized", err)
	}

	if ok, err := models.Logout(ctx, rotated.RefreshToken); err != nil || !ok {
		t.Fatalf("Logout: ok=%v err=%v", ok, err)
	}
	if _, err := models.Refresh(ctx, rotated.RefreshToken); !errors.Is(err, utils.ErrorUnauthorized) {
		t.Errorf("refresh after logout = %v, want ErrorUnauthorized", err)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("fleet-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("fleet-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=fleetmanager_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
