package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/marco/movieFinder/internal/catalog"
)

func renderHero() string {
	return heroStyle.Render("Find " + gradientStyle.Render("Movies") + " You'll Enjoy Without the Hassle")
}

func renderSearch(input textinput.Model) string {
	return searchStyle.Render(input.View())
}

func renderSpinner(s spinner.Model) string {
	return "  " + s.View() + mutedStyle.Render(" loading...")
}

// formatRating renders the vote average with one decimal, or N/A when unrated.
func formatRating(vote float64) string {
	if vote <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", vote)
}

// releaseYear returns the year prefix of a YYYY-MM-DD date, or N/A.
func releaseYear(date string) string {
	year, _, _ := strings.Cut(date, "-")
	if year == "" {
		return "N/A"
	}
	return year
}

func renderTrendingItem(rank int, m catalog.Movie, posters catalog.PosterResolver) string {
	return rankStyle.Render(fmt.Sprint(rank)) +
		titleStyle.Render(m.Title) + " " +
		mutedStyle.Render(posters.URL(m))
}

func renderMovieCard(m catalog.Movie, posters catalog.PosterResolver, width int) string {
	lang := m.OriginalLanguage
	if lang == "" {
		lang = "N/A"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(gradientStyle.Render("★ " + formatRating(m.VoteAverage)))
	b.WriteString(mutedStyle.Render(" • " + lang + " • " + releaseYear(m.ReleaseDate)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(posters.URL(m)))

	style := cardStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(b.String())
}
