package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
)

// PinCurrency adds a currency code to the pinned list.
func (a *App) PinCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(code)
	a.store.UpdateMainData(ctx, func(d *models.MainData) {
		if !slices.Contains(d.PinnedCurrencies, code) {
			d.PinnedCurrencies = append(d.PinnedCurrencies, code)
		}
	})
	fmt.Fprintf(a.out, "Pinned %s.\n", code)
	return nil
}

// UnpinCurrency removes a currency code from the pinned list.
func (a *App) UnpinCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(code)
	a.store.UpdateMainData(ctx, func(d *models.MainData) {
		d.PinnedCurrencies = slices.DeleteFunc(d.PinnedCurrencies, func(c string) bool {
			return c == code
		})
	})
	fmt.Fprintf(a.out, "Unpinned %s.\n", code)
	return nil
}

// Pins prints the currently pinned currencies.
func (a *App) Pins(ctx context.Context) error {
	data := a.store.GetMainData(ctx)
	if data == nil || len(data.PinnedCurrencies) == 0 {
		fmt.Fprintln(a.out, "No pinned currencies.")
		return nil
	}
	fmt.Fprintln(a.out, strings.Join(data.PinnedCurrencies, ", "))
	return nil
}

// SetPref sets a single preference field by name.
func (a *App) SetPref(ctx context.Context, name, value string) error {
	var ok bool
	a.store.UpdatePreferences(ctx, func(p *models.Preferences) {
		ok = true
		switch name {
		case "tab":
			p.ActiveTab = value
		case "numbers":
			p.NumberSystem = value
		case "locale":
			p.Locale = value
		case "timezone":
			p.Timezone = value
		default:
			ok = false
		}
	})
	if !ok {
		fmt.Fprintln(a.out, "Unknown preference. Known: tab, numbers, locale, timezone")
		return nil
	}
	fmt.Fprintf(a.out, "Set %s = %s\n", name, value)
	return nil
}

// Prefs prints the current preferences.
func (a *App) Prefs(ctx context.Context) error {
	p := a.store.GetPreferences(ctx)
	if p == nil {
		fmt.Fprintln(a.out, "No preferences set.")
		return nil
	}
	fmt.Fprintf(a.out, "tab:      %s\n", p.ActiveTab)
	fmt.Fprintf(a.out, "numbers:  %s\n", p.NumberSystem)
	fmt.Fprintf(a.out, "locale:   %s\n", p.Locale)
	fmt.Fprintf(a.out, "timezone: %s\n", p.Timezone)
	return nil
}

// ListItinerary prints the itinerary sorted the way the sync engine keeps it.
func (a *App) ListItinerary(ctx context.Context) error {
	it := a.store.GetItinerary(ctx)
	if it == nil || len(it.Items) == 0 {
		fmt.Fprintln(a.out, "Itinerary is empty.")
		return nil
	}
	for _, item := range it.Items {
		line := fmt.Sprintf("%s  %s", item.StartDate.Format("2006-01-02"), item.Title)
		if item.Location != "" {
			line += " @ " + item.Location
		}
		fmt.Fprintf(a.out, "%-36s %s\n", item.ID, line)
	}
	return nil
}

// AddItineraryItem interactively creates a new itinerary entry.
func (a *App) AddItineraryItem(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	dateStr, err := getSimpleText(a.reader, "Date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid date: %v\n", err)
		return nil
	}
	location, err := getSimpleText(a.reader, "Location (optional)", os.Stdout)
	if err != nil {
		return err
	}

	item := models.NewItineraryItem(title, models.NewISOTime(date))
	item.Location = location

	a.store.UpdateItinerary(ctx, func(it *models.Itinerary) {
		it.Items = append(it.Items, item)
	})
	fmt.Fprintf(a.out, "Added %s\n", item.ID)
	return nil
}

// RemoveItineraryItem deletes an itinerary entry by ID.
func (a *App) RemoveItineraryItem(ctx context.Context, id string) error {
	var removed bool
	a.store.UpdateItinerary(ctx, func(it *models.Itinerary) {
		n := len(it.Items)
		it.Items = slices.DeleteFunc(it.Items, func(i models.ItineraryItem) bool {
			return i.ID == id
		})
		removed = len(it.Items) < n
	})
	if !removed {
		fmt.Fprintln(a.out, "No such item.")
		return nil
	}
	fmt.Fprintln(a.out, "Removed.")
	return nil
}

// History prints recent searches and visited countries.
func (a *App) History(ctx context.Context) error {
	sd := a.store.GetSearchData(ctx)
	if sd == nil {
		fmt.Fprintln(a.out, "No search history.")
		return nil
	}
	if len(sd.RecentCountries) > 0 {
		fmt.Fprintf(a.out, "Recent countries: %s\n", strings.Join(sd.RecentCountries, ", "))
	}
	for _, q := range sd.SearchHistory {
		fmt.Fprintln(a.out, q)
	}
	return nil
}
