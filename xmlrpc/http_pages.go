// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
)

// --- HTML templates ---

const fontImports = `<link rel="preconnect" href="https://fonts.googleapis.com">` +
	`<link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>` +
	`<link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;600;700&family=JetBrains+Mono:wght@400;600&display=swap" rel="stylesheet">`

const logoURL = "https://vgi-rpc-python.query.farm/assets/logo-hero.png"

const describeHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s API Reference &mdash; XML-RPC</title>
%s
<style>
  body { font-family: 'Inter', system-ui, -apple-system, sans-serif; max-width: 900px;
         margin: 0 auto; padding: 40px 20px 0; color: #2c2c1e; background: #faf8f0; }
  .header { text-align: center; margin-bottom: 40px; }
  .header .logo img { width: 80px; height: 80px; border-radius: 50%%;
                       box-shadow: 0 3px 16px rgba(0,0,0,0.10); }
  .header h1 { margin-bottom: 4px; color: #2d5016; font-weight: 700; }
  .header .subtitle { color: #6b6b5a; font-size: 1.1em; margin-top: 0; }
  .header .meta { color: #6b6b5a; font-size: 0.9em; }
  .header .meta a { color: #2d5016; font-weight: 600; }
  code, pre { font-family: 'JetBrains Mono', monospace; background: #f0ece0;
              padding: 2px 6px; border-radius: 3px; font-size: 0.85em; color: #2c2c1e; }
  pre { padding: 10px; white-space: pre-wrap; }
  a { color: #2d5016; text-decoration: none; }
  a:hover { color: #4a7c23; }
  .card { border: 1px solid #f0ece0; border-radius: 8px; padding: 20px;
           margin-bottom: 16px; background: #fff; }
  .card:hover { border-color: #c8a43a; }
  .card-header { display: flex; align-items: center; gap: 10px; margin-bottom: 12px; }
  .method-name { font-family: 'JetBrains Mono', monospace; font-size: 1.1em; font-weight: 600;
                  color: #2d5016; }
  .badge { display: inline-block; padding: 2px 8px; border-radius: 4px;
            font-size: 0.75em; font-weight: 600; text-transform: uppercase;
            letter-spacing: 0.03em; }
  .badge-method { background: #e8f5e0; color: #2d5016; }
  .badge-introspection { background: #e0ecf5; color: #1a4a6b; }
  .no-params { color: #6b6b5a; font-style: italic; font-size: 0.9em; }
  .section-label { font-size: 0.8em; font-weight: 600; text-transform: uppercase;
                    letter-spacing: 0.05em; color: #6b6b5a; margin-top: 14px;
                    margin-bottom: 6px; }
  ul.signatures { margin: 0; padding-left: 18px; }
  .help p { margin: 0 0 8px; }
  footer { text-align: center; margin-top: 48px; padding: 20px 0;
            border-top: 1px solid #f0ece0; color: #6b6b5a; font-size: 0.85em; }
  footer a { color: #2d5016; font-weight: 600; }
</style>
</head>
<body>
<div class="header">
  <div class="logo">
    <img src="%s" alt="Query.Farm logo">
  </div>
  <h1>%s</h1>
  <p class="subtitle">XML-RPC API Reference</p>
  <p class="meta">route <code>%s</code> &middot; POST <code>text/xml</code> &middot;
<a href="?describe">Arrow describe</a></p>
</div>
%s
<footer>
  &copy; 2026 &#x1F69C; <a href="https://query.farm">Query.Farm LLC</a>
</footer>
</body>
</html>`

// --- Page builders ---

func buildDescribeHTML(reg *Registry, protocolName, routeName string) []byte {
	var cards strings.Builder
	for _, name := range describeNames(reg) {
		buildMethodCard(&cards, reg, name)
	}
	return []byte(fmt.Sprintf(describeHTMLTemplate,
		html.EscapeString(protocolName), // <title>
		fontImports,
		logoURL,
		html.EscapeString(protocolName), // <h1>
		html.EscapeString(routeName),
		cards.String(),
	))
}

func buildMethodCard(w *strings.Builder, reg *Registry, name string) {
	badgeClass, badgeLabel := "badge-method", "METHOD"
	if IsReserved(name) {
		badgeClass, badgeLabel = "badge-introspection", "INTROSPECTION"
	}

	w.WriteString(`<div class="card">`)
	w.WriteString(`<div class="card-header">`)
	fmt.Fprintf(w, `<span class="method-name">%s</span>`, html.EscapeString(name))
	fmt.Fprintf(w, `<span class="badge %s">%s</span>`, badgeClass, badgeLabel)
	w.WriteString(`</div>`) // card-header

	w.WriteString(`<div class="section-label">Signatures</div>`)
	if sigs := signaturesOrReserved(reg, name); len(sigs) > 0 {
		w.WriteString(`<ul class="signatures">`)
		for _, sig := range sigs {
			fmt.Fprintf(w, `<li><code>%s</code></li>`, html.EscapeString(formatSignature(name, sig)))
		}
		w.WriteString(`</ul>`)
	} else {
		w.WriteString(`<p class="no-params">No declared signature</p>`)
	}

	if help, ok := reg.Help(name); ok {
		w.WriteString(`<div class="section-label">Help</div>`)
		w.WriteString(`<div class="help">`)
		w.WriteString(renderHelp(help))
		w.WriteString(`</div>`)
	}

	w.WriteString(`</div>`) // card
	w.WriteString("\n")
}

// renderHelp renders Markdown help text. Raw HTML in the source is
// omitted by the renderer.
func renderHelp(help string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(help), &buf); err != nil {
		return "<pre>" + html.EscapeString(help) + "</pre>"
	}
	return buf.String()
}

var markdown = goldmark.New()

// --- HTTP handlers ---

func (r *Route) handleGet(w http.ResponseWriter, req *http.Request) {
	if wantsArrow(req) {
		r.serveDescribe(w, req)
		return
	}
	if !r.pages {
		http.NotFound(w, req)
		return
	}
	r.mu.RLock()
	level := r.compressionLevel
	r.mu.RUnlock()
	writeBody(w, req, http.StatusOK, htmlContentType, buildDescribeHTML(r.registry, r.protocolName, r.name), level)
}
