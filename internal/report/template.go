package report

import "html/template"

// pageTemplate is the full standalone report document. Colors come from
// run options; everything else is fixed so identical inputs yield
// identical markup.
var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Pixelfin Images - {{.LibraryName}}</title>
<style>
body { font-family: sans-serif; font-size: 18px; background-color: {{.Colors.Background}}; color: {{.Colors.Text}}; }
h1 { font-size: 36px; margin-bottom: 20px; }
h2 { font-size: 28px; margin: 20px 0 20px 0; text-align: center; }
.run-summary { margin-bottom: 20px; }
.entry { margin-bottom: 50px; display: flex; flex-direction: column; border: 2px solid #555; padding: 15px; border-radius: 10px; }
.image-row { display: flex; gap: 16px; margin-top: 15px; }
.left-column { flex: 0 0 33%; display: flex; flex-direction: column; min-width: 0; }
.right-column { flex: 0 0 67%; display: flex; flex-direction: column; gap: 10px; min-width: 0; }
.image-grid { position: relative; margin-bottom: 10px; }
.image-grid img { width: 100%; height: auto; display: block; cursor: pointer; border: 2px solid #ccc; border-radius: 5px; }
.logo-img { width: 60%; height: auto; display: block; }
.banner-full { width: 100%; height: auto; display: block; }
.box-row { display: flex; gap: 10px; }
.box-row .image-grid { flex: 1 1 0; }
.lightbox { display: none; position: fixed; z-index: 999; padding-top: 60px; left: 0; top: 0; width: 100%; height: 100%; overflow: auto; background-color: rgba(0,0,0,0.9); }
.lightbox-content { position: relative; margin: auto; max-width: 90%; max-height: 90%; text-align: center; }
.lightbox-caption { color: #fff; font-size: 18px; margin-bottom: 10px; }
.lightbox-content img { max-width: 100%; max-height: 80vh; margin-top: 10px; cursor: pointer; }
.lightbox-buttons { margin-top: 10px; }
.lightbox-buttons button { font-size: 16px; padding: 10px 16px; min-width: 110px; line-height: 1; border-radius: 6px; }
table { border-collapse: collapse; margin-bottom: 40px; width: 100%; background-color: {{.Colors.TableBackground}}; }
th, td { border: 1px solid #ccc; padding: 8px; text-align: left; font-size: 18px; color: {{.Colors.Text}}; }
th { background-color: rgba(200,200,200,0.2); }
tr.needs-attention td { background-color: rgba(255,0,0,0.08); }
td.cell-ok { color: #4caf50; }
td.cell-missing { color: red; font-weight: bold; }
td.cell-lowres { color: orange; font-weight: bold; }
.missing-list { color: red; font-weight: bold; text-align: center; margin-top: auto; }
.placeholder { border: 2px dashed red; border-radius: 5px; color: red; font-weight: bold; display: flex; align-items: center; justify-content: center; height: 150px; }
a { color: {{.Colors.Text}}; text-decoration: none; }
a:hover { text-decoration: underline; }
.backlink { margin-bottom: 20px; }
.scroll-top { text-align: center; margin-top: 10px; }
.entry-title { margin-bottom: 15px; }
.resolution { font-size: 14px; opacity: 0.9; }
.resolution.lowres { color: red; opacity: 1; }
.source-link { font-size: 14px; opacity: 0.8; }
</style>
</head>
<body>
{{if .BackLink}}<div class="backlink" id="top"><a href="{{.BackLink}}">&larr; Back to Main Page</a></div>{{else}}<div id="top"></div>{{end}}
<h1>{{.LibraryName}}</h1>
<p class="run-summary">{{.Summary.Items}} items: {{.Summary.Complete}} complete, {{.Summary.Missing}} missing artwork, {{.Summary.LowRes}} with low-resolution artwork.</p>

<h2>Artwork Summary</h2>
<table>
<tr><th>Item Name</th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .SummaryRows}}<tr{{if .Class}} class="{{.Class}}"{{end}}><td><a href="#{{.Anchor}}">{{.Title}}</a> <a class="source-link" target="_blank" href="{{.PageURL}}">&#8599;</a></td>{{range .Cells}}<td class="{{.Class}}">{{.Mark}}</td>{{end}}</tr>
{{end}}</table>

{{range .Items}}
<div class="entry" id="{{.Anchor}}">
<h2 class="entry-title"><a target="_blank" href="{{.PageURL}}">{{.Title}}</a></h2>
<div class="image-row">
<div class="left-column">
{{range .Left}}{{template "image" .}}{{end}}
{{if .Missing}}<div class="missing-list">Missing:<br>{{range $i, $m := .Missing}}{{if $i}}, {{end}}{{$m}}{{end}}</div>{{end}}
</div>
<div class="right-column">
{{range .RightFull}}{{template "image" .}}{{end}}
{{if .BoxRow}}<div class="box-row">
{{range .BoxRow}}{{template "image" .}}{{end}}
</div>{{end}}
{{range .Logos}}{{template "image" .}}{{end}}
</div>
</div>
<div class="scroll-top"><a href="#top">&uarr; Scroll to Top</a></div>
</div>
{{end}}

<div id="lightbox" class="lightbox" onclick="clickOutside(event)">
  <div class="lightbox-content">
    <div class="lightbox-caption" id="lightbox-caption"></div>
    <img id="lightbox-img" src="" onclick="nextImage(event)">
    <div class="lightbox-buttons">
      <button onclick="prevImage(event)">&#9664; Prev</button>
      <button onclick="nextImage(event)">Next &#9654;</button>
      <button onclick="closeLightbox()">Close &#10006;</button>
    </div>
  </div>
</div>
<script>
let currentImages = [];
let currentIndex = 0;

function openLightbox(entryId, src) {
  currentImages = [];
  const imgs = document.querySelectorAll("#" + entryId + " img.gallery-img");
  imgs.forEach(i => currentImages.push({src: i.src, caption: i.alt || ""}));
  const idx = currentImages.findIndex(i => i.src === src);
  currentIndex = idx >= 0 ? idx : 0;
  showImage();
  document.getElementById('lightbox').style.display = 'block';
}

function showImage() {
  if (!currentImages.length) return;
  document.getElementById('lightbox-img').src = currentImages[currentIndex].src;
  document.getElementById('lightbox-caption').innerText = currentImages[currentIndex].caption;
}

function closeLightbox() {
  document.getElementById('lightbox').style.display = 'none';
  currentImages = [];
  currentIndex = 0;
}

function prevImage(e) { e.stopPropagation(); if (!currentImages.length) return; currentIndex = (currentIndex - 1 + currentImages.length) % currentImages.length; showImage(); }
function nextImage(e) { e.stopPropagation(); if (!currentImages.length) return; currentIndex = (currentIndex + 1) % currentImages.length; showImage(); }
function clickOutside(e) { if (e.target.id === 'lightbox') { closeLightbox(); } }

document.addEventListener('keydown', function(e) {
  if (e.key === 'Escape') closeLightbox();
  else if (e.key === 'ArrowLeft') prevImage(e);
  else if (e.key === 'ArrowRight') nextImage(e);
});
</script>
</body>
</html>
{{define "image"}}{{if .Present}}<div class="image-grid">
  <a href="#lightbox" onclick="openLightbox(this.closest('.entry').id, this.querySelector('img').src); return false;">
    <img src="{{.Src}}" class="gallery-img{{if .Class}} {{.Class}}{{end}}" alt="{{.Caption}}" loading="lazy">
  </a>
  <div class="resolution{{if .LowRes}} lowres{{end}}">{{.Caption}}</div>
</div>{{else}}<div class="image-grid"><div class="placeholder">Missing: {{.Label}}</div></div>{{end}}{{end}}
`))
