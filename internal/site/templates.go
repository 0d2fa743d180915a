package site

import "html/template"

// pageTemplate is the homepage skeleton. The publications container and the
// team containers are left empty and filled through the dom package, so the
// static build and the preview server share one rendering path.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="css/style.css">
<script src="{{.Script}}" defer></script>
</head>
<body data-mode="{{.Mode}}">
<section id="about">
{{.About}}
<label id="show-selected"><input type="checkbox" class="select-pubs" checked> Show selected publications only</label>
<h2 id="pubs_title">Publications</h2>
<ul id="selected-pubs">
{{- range $i, $item := .Selected}}
<li id="selected-{{$i}}"{{if .Other}} class="other"{{end}}><b>{{.Title}}</b> {{.Venue}}</li>
{{- end}}
</ul>
</section>
<section id="publications">
<h2>Publications</h2>
<div class="filters">
{{- range .Buttons}}
<button class="filter-btn" id="{{.Keyword}}" data-fragment="{{.Fragment}}">{{.Keyword}}</button>
{{- end}}
</div>
<ul id="display-pubs"></ul>
</section>
<section id="team">
<h2>Current members</h2>
<div class="row" id="team-container-current"></div>
<h2>Alumni</h2>
<div class="row" id="team-container-alumni"></div>
</section>
</body>
</html>
`

// compiledPage is parsed at init time to fail fast on template errors.
var compiledPage = template.Must(template.New("page").Parse(pageTemplate))

// pageData holds data for the page template.
type pageData struct {
	Title    string
	Mode     Mode
	Script   string
	About    template.HTML
	Buttons  []filterButton
	Selected []selectedItem
}

// filterButton is one keyword filter and the fragment a static page loads
// for it.
type filterButton struct {
	Keyword  string
	Fragment string
}

// selectedItem is one line of the about page publication list.
type selectedItem struct {
	Title template.HTML
	Venue string
	Other bool
}
