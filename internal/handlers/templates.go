// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "html/template"

// The public site intentionally ships only a handful of pages, so the
// templates live here instead of a template directory.

var landingTmpl = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Nutra</title>
<meta name="description" content="{{.T.tagline}}">
<link rel="stylesheet" href="/static/styles.css">
</head>
<body>
<header class="hero">
<h1>Nutra</h1>
<p>{{.T.tagline}}</p>
<form method="post" action="/waitlist" class="waitlist">
<input type="email" name="email" required placeholder="you@example.com">
<input type="hidden" name="locale" value="{{.Locale}}">
<button type="submit">{{.T.cta}}</button>
</form>
</header>
{{if .Recipes}}
<section class="recipes">
<ul>
{{range .Recipes}}
<li><a href="{{.URL}}">{{if .PhotoURL}}<img src="{{.PhotoURL}}" alt="{{.Name}}" loading="lazy">{{end}}<span>{{.Name}}</span></a></li>
{{end}}
</ul>
</section>
{{end}}
</body>
</html>
`))

var recipeTmpl = template.Must(template.New("recipe").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Recipe.Name}} — Nutra</title>
<meta name="description" content="{{.Recipe.Description}}">
<link rel="canonical" href="{{.CanonicalURL}}">
<meta property="og:title" content="{{.Recipe.Name}}">
<meta property="og:type" content="article">
<meta property="og:url" content="{{.CanonicalURL}}">
{{if .Recipe.PhotoURL}}<meta property="og:image" content="{{.Recipe.PhotoURL}}">{{end}}
<link rel="stylesheet" href="/static/styles.css">
<script type="application/ld+json">{{.JSONLD}}</script>
</head>
<body>
<article class="recipe">
<h1>{{.Recipe.Name}}</h1>
<p class="meta">{{.Recipe.Servings}} {{.T.servings}} · {{.T.prep}} {{.Recipe.PrepMinutes}} {{.T.minutes}} · {{.T.cook}} {{.Recipe.CookMinutes}} {{.T.minutes}}</p>
{{if .Recipe.PhotoURL}}<img class="photo" src="{{.Recipe.PhotoURL}}" alt="{{.Recipe.Name}}">{{end}}
<div class="description">{{.Description}}</div>
<h2>{{.T.ingredients}}</h2>
<ul class="ingredients">
{{range .Recipe.Ingredients}}
<li>{{if .Amount}}{{.Amount}} {{end}}{{if .Unit}}{{.Unit}} {{end}}{{.Name}}</li>
{{end}}
</ul>
{{if .Recipe.Steps}}
<h2>{{.T.steps}}</h2>
<ol class="steps">
{{range .Recipe.Steps}}<li>{{.}}</li>
{{end}}</ol>
{{end}}
{{if .Recipe.Nutrition}}
<h2>{{.T.nutrition}}</h2>
<table class="nutrition">
<tr><td>kcal</td><td>{{printf "%.0f" .Recipe.Nutrition.PerServing.Calories}}</td></tr>
<tr><td>protein</td><td>{{printf "%.1f" .Recipe.Nutrition.PerServing.Protein}} g</td></tr>
<tr><td>carbs</td><td>{{printf "%.1f" .Recipe.Nutrition.PerServing.Carbs}} g</td></tr>
<tr><td>fat</td><td>{{printf "%.1f" .Recipe.Nutrition.PerServing.Fat}} g</td></tr>
</table>
{{end}}
</article>
</body>
</html>
`))

var legalTmpl = template.Must(template.New("legal").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — Nutra</title>
<link rel="stylesheet" href="/static/styles.css">
</head>
<body>
<article class="legal">
<h1>{{.Title}}</h1>
{{.Content}}
</article>
</body>
</html>
`))

// legalPage is a static legal document in one locale.
type legalPage struct {
	Title string
	Body  string
}

// legalContent holds the terms and privacy documents per locale. Legal
// copy is maintained here by hand; it changes a few times a year at most.
var legalContent = map[string]map[string]legalPage{
	"cs": {
		"terms": {
			Title: "Obchodní podmínky",
			Body: `<p>Používáním aplikace Nutra souhlasíte s těmito podmínkami.
Aplikace poskytuje nutriční doporučení pouze pro informační účely a
nenahrazuje odbornou lékařskou péči.</p>`,
		},
		"privacy": {
			Title: "Ochrana osobních údajů",
			Body: `<p>Zpracováváme pouze údaje nezbytné pro provoz služby: e-mail,
jazykové preference a údaje o receptech. Údaje nikdy neprodáváme třetím
stranám.</p>`,
		},
	},
	"en": {
		"terms": {
			Title: "Terms of Service",
			Body: `<p>By using Nutra you agree to these terms. The app provides
nutritional guidance for informational purposes only and is not a
substitute for professional medical advice.</p>`,
		},
		"privacy": {
			Title: "Privacy Policy",
			Body: `<p>We process only the data needed to run the service: your
email, language preference, and recipe data. We never sell data to third
parties.</p>`,
		},
	},
}
