// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"nutra/internal/cache"
	"nutra/internal/markdown"
	"nutra/internal/models"
	"nutra/internal/routes"
	"nutra/internal/slug"
	"nutra/internal/store"
)

// Public groups the marketing-site handlers. Pages are rendered from
// embedded templates and cached whole in Valkey; the resolver decides
// whether a recipe URL renders, redirects, or 404s.
type Public struct {
	resolver  *routes.Resolver
	recipes   *store.RecipeStore
	waitlist  *store.WaitlistStore
	pageCache *cache.PageCache
	siteURL   string
	defLocale string
}

// NewPublic creates a new Public handler group.
func NewPublic(resolver *routes.Resolver, recipes *store.RecipeStore, waitlist *store.WaitlistStore, pageCache *cache.PageCache, siteURL, defaultLocale string) *Public {
	return &Public{
		resolver:  resolver,
		recipes:   recipes,
		waitlist:  waitlist,
		pageCache: pageCache,
		siteURL:   strings.TrimRight(siteURL, "/"),
		defLocale: defaultLocale,
	}
}

// localized holds the per-locale strings the public templates need.
var localized = map[string]map[string]string{
	"cs": {
		"tagline":     "Jídelníček na míru, recepty podle vašich cílů.",
		"cta":         "Přidejte se na čekací listinu",
		"ingredients": "Ingredience",
		"steps":       "Postup",
		"nutrition":   "Nutriční hodnoty (na porci)",
		"servings":    "porce",
		"prep":        "příprava",
		"cook":        "vaření",
		"minutes":     "min",
	},
	"en": {
		"tagline":     "Meal plans and recipes built around your goals.",
		"cta":         "Join the waitlist",
		"ingredients": "Ingredients",
		"steps":       "Steps",
		"nutrition":   "Nutrition (per serving)",
		"servings":    "servings",
		"prep":        "prep",
		"cook":        "cook",
		"minutes":     "min",
	},
}

// Landing handles GET /{locale}: the marketing landing page with the
// latest public recipes.
func (p *Public) Landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := chi.URLParam(r, "locale")

	if cached, ok := p.pageCache.Get(ctx, cache.LandingKey(locale)); ok {
		writeHTML(w, cached)
		return
	}

	recipes, err := p.recipes.List(store.Filter{
		Visibility: models.VisibilityPublic,
		Limit:      6,
	})
	if err != nil {
		slog.Error("landing recipe list failed", "error", err)
	}

	var buf bytes.Buffer
	err = landingTmpl.Execute(&buf, map[string]any{
		"Locale":  locale,
		"T":       localized[locale],
		"Recipes": p.landingCards(locale, recipes),
	})
	if err != nil {
		slog.Error("landing render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.Set(ctx, cache.LandingKey(locale), buf.Bytes())
	writeHTML(w, buf.Bytes())
}

type landingCard struct {
	Name     string
	URL      string
	PhotoURL string
}

func (p *Public) landingCards(locale string, recipes []models.Recipe) []landingCard {
	cards := make([]landingCard, 0, len(recipes))
	for _, r := range recipes {
		card := landingCard{
			Name: r.Name,
			URL:  "/" + r.Locale() + "/recipes/" + slug.Canonical(r.ID, r.Slug),
		}
		if r.PhotoURL != nil {
			card.PhotoURL = *r.PhotoURL
		}
		cards = append(cards, card)
	}
	return cards
}

// RecipePage handles GET /{locale}/recipes/{slug}. Wrong-locale hits
// redirect permanently to the recipe's own locale; non-canonical slugs
// redirect temporarily to the canonical "{id}-{slug}" form.
func (p *Public) RecipePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := chi.URLParam(r, "locale")
	rawSlug := chi.URLParam(r, "slug")

	if cached, ok := p.pageCache.Get(ctx, cache.RecipeKey(locale, rawSlug)); ok {
		writeHTML(w, cached)
		return
	}

	res, err := p.resolver.Resolve(ctx, locale, rawSlug)
	if err != nil {
		slog.Error("recipe resolve failed", "error", err, "slug", rawSlug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	switch {
	case res.RedirectPath != "":
		status := http.StatusFound
		if res.Permanent {
			status = http.StatusMovedPermanently
		}
		http.Redirect(w, r, res.RedirectPath, status)
		return
	case res.Recipe == nil:
		http.NotFound(w, r)
		return
	}

	page, err := p.renderRecipe(locale, res.Recipe)
	if err != nil {
		slog.Error("recipe render failed", "error", err, "id", res.Recipe.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.Set(ctx, cache.RecipeKey(locale, rawSlug), page)
	writeHTML(w, page)
}

// renderRecipe builds the full HTML page for a recipe, including SEO
// meta tags and JSON-LD structured data.
func (p *Public) renderRecipe(locale string, recipe *models.Recipe) ([]byte, error) {
	descHTML, err := markdown.ToHTML(recipe.Description)
	if err != nil {
		return nil, fmt.Errorf("render description: %w", err)
	}

	jsonLD, err := p.recipeJSONLD(locale, recipe)
	if err != nil {
		return nil, fmt.Errorf("build json-ld: %w", err)
	}

	canonical := p.siteURL + "/" + locale + "/recipes/" + slug.Canonical(recipe.ID, recipe.Slug)

	var buf bytes.Buffer
	err = recipeTmpl.Execute(&buf, map[string]any{
		"Locale":       locale,
		"T":            localized[locale],
		"Recipe":       recipe,
		"Description":  template.HTML(descHTML),
		"CanonicalURL": canonical,
		"JSONLD":       template.JS(jsonLD),
	})
	if err != nil {
		return nil, fmt.Errorf("execute recipe template: %w", err)
	}
	return buf.Bytes(), nil
}

// recipeJSONLD builds schema.org Recipe structured data.
func (p *Public) recipeJSONLD(locale string, r *models.Recipe) ([]byte, error) {
	ingredients := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		parts := []string{}
		if ing.Amount != nil {
			parts = append(parts, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *ing.Amount), "0"), "."))
		}
		if ing.Unit != nil {
			parts = append(parts, *ing.Unit)
		}
		parts = append(parts, ing.Name)
		ingredients = append(ingredients, strings.Join(parts, " "))
	}

	steps := make([]map[string]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, map[string]string{"@type": "HowToStep", "text": s})
	}

	data := map[string]any{
		"@context":           "https://schema.org",
		"@type":              "Recipe",
		"name":               r.Name,
		"description":        r.Description,
		"recipeYield":        fmt.Sprintf("%d", r.Servings),
		"prepTime":           fmt.Sprintf("PT%dM", r.PrepMinutes),
		"cookTime":           fmt.Sprintf("PT%dM", r.CookMinutes),
		"recipeIngredient":   ingredients,
		"recipeInstructions": steps,
		"inLanguage":         locale,
	}
	if r.PhotoURL != nil {
		data["image"] = *r.PhotoURL
	}
	if r.Nutrition != nil {
		data["nutrition"] = map[string]any{
			"@type":               "NutritionInformation",
			"calories":            fmt.Sprintf("%.0f kcal", r.Nutrition.PerServing.Calories),
			"proteinContent":      fmt.Sprintf("%.1f g", r.Nutrition.PerServing.Protein),
			"carbohydrateContent": fmt.Sprintf("%.1f g", r.Nutrition.PerServing.Carbs),
			"fatContent":          fmt.Sprintf("%.1f g", r.Nutrition.PerServing.Fat),
		}
	}
	return json.Marshal(data)
}

// ShortLink handles GET /r/{slug}: the share URL printed in the app.
// It resolves the slug and redirects permanently to the full page in
// the recipe's own locale.
func (p *Public) ShortLink(w http.ResponseWriter, r *http.Request) {
	rawSlug := chi.URLParam(r, "slug")

	res, err := p.resolver.Resolve(r.Context(), "", rawSlug)
	if err != nil {
		slog.Error("short link resolve failed", "error", err, "slug", rawSlug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if res.RedirectPath == "" {
		http.NotFound(w, r)
		return
	}
	// The empty request locale never matches, so the resolver always
	// answers with the canonical path under the recipe's locale.
	http.Redirect(w, r, res.RedirectPath, http.StatusMovedPermanently)
}

// Legal handles GET /{locale}/legal/{page} for terms and privacy.
func (p *Public) Legal(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	page := chi.URLParam(r, "page")

	content, ok := legalContent[locale][page]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	err := legalTmpl.Execute(&buf, map[string]any{
		"Locale":  locale,
		"Title":   content.Title,
		"Content": template.HTML(content.Body),
	})
	if err != nil {
		slog.Error("legal render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

// LegalRedirect handles the unprefixed legacy paths /legal/{page},
// redirecting permanently into the default locale.
func (p *Public) LegalRedirect(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	http.Redirect(w, r, "/"+p.defLocale+"/legal/"+page, http.StatusMovedPermanently)
}

// Waitlist handles POST /waitlist: {"email": "...", "locale": "cs|en"}.
// Duplicate signups succeed silently so the form can't probe membership.
func (p *Public) Waitlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email  string `json:"email"`
		Locale string `json:"locale"`
	}
	if err := decodeJSON(r, &body); err != nil {
		// The plain HTML form posts urlencoded.
		body.Email = r.PostFormValue("email")
		body.Locale = r.PostFormValue("locale")
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(body.Email))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	locale := body.Locale
	if locale != "en" {
		locale = "cs"
	}

	if err := p.waitlist.Add(addr.Address, locale); err != nil {
		slog.Error("waitlist add failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not join the waitlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// sitemapURL is one <url> entry in the generated sitemap.
type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap handles GET /sitemap.xml. Only PUBLIC recipes are listed;
// UNLISTED ones stay resolvable but never enumerable.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := p.pageCache.Get(ctx, cache.SitemapKey); ok {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write(cached)
		return
	}

	entries, err := p.recipes.ListPublicForSitemap()
	if err != nil {
		slog.Error("sitemap query failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	set := sitemapSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, locale := range []string{"cs", "en"} {
		set.URLs = append(set.URLs,
			sitemapURL{Loc: p.siteURL + "/" + locale},
			sitemapURL{Loc: p.siteURL + "/" + locale + "/legal/terms"},
			sitemapURL{Loc: p.siteURL + "/" + locale + "/legal/privacy"},
		)
	}
	for _, e := range entries {
		locale := "cs"
		if e.Language != nil && *e.Language == "en" {
			locale = "en"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     p.siteURL + "/" + locale + "/recipes/" + slug.Canonical(e.ID, e.Slug),
			LastMod: e.UpdatedAt.Format("2006-01-02"),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		slog.Error("sitemap marshal failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	body := append([]byte(xml.Header), out...)

	p.pageCache.Set(ctx, cache.SitemapKey, body)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(body)
}

// Robots handles GET /robots.txt.
func (p *Public) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nDisallow: /admin/\nSitemap: %s/sitemap.xml\n", p.siteURL)
}

// Home handles GET /: redirect to the default locale's landing page.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+p.defLocale, http.StatusFound)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}
