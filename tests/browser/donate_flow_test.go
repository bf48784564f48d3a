package browser_test

import (
	"testing"

	"github.com/playwright-community/playwright-go"
)

// TestDonate_PledgeFlow walks the whole pledge: a logged-in donor opens a
// need, enters quantities, picks a delivery method, and lands on the new
// donation's detail page.
func TestDonate_PledgeFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	app.seedNeed("req-1", "Ananda Maha Vidyalaya", "Kandy", "Textbooks", 50, 10)

	page := app.newPage(t)
	app.loginDonor(t, page)

	if _, err := page.Goto(app.BaseURL + "/needs/req-1"); err != nil {
		t.Fatalf("failed to navigate to need detail: %v", err)
	}
	if err := page.Locator("input[name='qty_Textbooks']").Fill("5"); err != nil {
		t.Fatalf("failed to fill quantity: %v", err)
	}
	if _, err := page.Locator("select[name=deliveryMethod]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"courier"},
	}); err != nil {
		t.Fatalf("failed to pick delivery method: %v", err)
	}
	if err := page.Locator("button:has-text('Pledge donation')").Click(); err != nil {
		t.Fatalf("failed to submit pledge: %v", err)
	}

	if err := page.WaitForURL("**/donations/don-*", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("pledge did not land on the donation detail page: %v", err)
	}
	err := page.Locator(".flash-success").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("success flash missing after pledge: %v", err)
	}

	// The donation shows up on the donor's list afterwards.
	if _, err := page.Goto(app.BaseURL + "/my-donations"); err != nil {
		t.Fatalf("failed to navigate to my donations: %v", err)
	}
	err = page.Locator("text=Ananda Maha Vidyalaya").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("new donation missing from the list: %v", err)
	}
}

// TestDonate_AnonymousIsSentToLogin keeps the pledge behind a donor
// session.
func TestDonate_AnonymousIsSentToLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	app.seedNeed("req-1", "Ananda Maha Vidyalaya", "Kandy", "Textbooks", 50, 10)

	page := app.newPage(t)
	if _, err := page.Goto(app.BaseURL + "/my-donations"); err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}
	if err := page.WaitForURL("**/donor-login", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("anonymous visit was not redirected to login: %v", err)
	}
}
