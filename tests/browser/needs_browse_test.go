package browser_test

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// TestNeeds_SearchFiltersBySchoolName types into the search box and applies
// the filter form; only the matching card remains.
func TestNeeds_SearchFiltersBySchoolName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	app.seedNeed("req-1", "Ananda Maha Vidyalaya", "Kandy", "Textbooks", 50, 10)
	app.seedNeed("req-2", "Rippon Girls College", "Galle", "Stationery", 30, 0)
	app.seedNeed("req-3", "Jaffna Hindu College", "Jaffna", "Shoes", 80, 20)

	page := app.newPage(t)
	if _, err := page.Goto(app.BaseURL + "/needs"); err != nil {
		t.Fatalf("failed to navigate to needs: %v", err)
	}

	if err := page.Locator("input[name=search]").Fill("Rippon"); err != nil {
		t.Fatalf("failed to fill search: %v", err)
	}
	if err := page.Locator(".filters button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to apply filters: %v", err)
	}

	err := page.Locator("text=Rippon Girls College").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("matching school missing after search: %v", err)
	}
	count, err := page.Locator("text=Ananda Maha Vidyalaya").Count()
	if err != nil {
		t.Fatalf("failed to count non-matching cards: %v", err)
	}
	if count != 0 {
		t.Errorf("non-matching school still visible after search")
	}
}

// TestNeeds_PaginationWalksPages seeds more needs than fit on one page and
// clicks through to page two.
func TestNeeds_PaginationWalksPages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	for i := 1; i <= 15; i++ {
		app.seedNeed(fmt.Sprintf("req-%02d", i), fmt.Sprintf("School %02d", i), "Galle", "Textbooks", 20, 0)
	}

	page := app.newPage(t)
	if _, err := page.Goto(app.BaseURL + "/needs"); err != nil {
		t.Fatalf("failed to navigate to needs: %v", err)
	}

	err := page.Locator("text=Showing 1 to 10 of 15 entries").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("first page range summary missing: %v", err)
	}

	if err := page.Locator(".pagination a:has-text('Next')").Click(); err != nil {
		t.Fatalf("failed to click Next: %v", err)
	}
	err = page.Locator("text=Showing 11 to 15 of 15 entries").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("second page range summary missing: %v", err)
	}
}
