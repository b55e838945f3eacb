package web

const css = `h1 {
  color: #36a8e1;
  text-align: center;
}

.container {
  width: 70vw;
  margin: auto;
  display: block;
}

fieldset {
  margin-bottom: 1em;
}

label {
  display: inline-block;
  min-width: 8em;
}

.error {
  color: #c0392b;
}`

const layout = `{{define "head"}}<!DOCTYPE html>
<html lang="de">
<head>
	<meta charset="utf-8">
	<title>PhysioFIT Auslastungsradar</title>
	<link rel="stylesheet" href="/style.css">
</head>
<body>

	<h1>PhysioFIT Auslastungsradar</h1>

	<div class="container">
{{end}}

{{define "foot"}}
	</div>

</body>
</html>{{end}}`

const formPage = `{{define "form"}}{{template "head"}}
		{{if .Step}}<h2>{{.Step}}</h2>{{end}}
		{{if .Invalid}}<p class="error">Ungültiges Zeitformat, bitte HH:MM verwenden.</p>{{end}}
		<form method="post" action="{{.Action}}">
			<input type="hidden" name="flow" value="{{.Flow}}">
			{{range .Groups}}
			<fieldset>
				<legend>{{.Day}}</legend>
				{{range .Inputs}}
				<p{{if .Invalid}} class="error"{{end}}>
					<label for="{{.Name}}">{{.Label}}</label>
					{{if eq .Type "checkbox"}}
					<input type="checkbox" id="{{.Name}}" name="{{.Name}}" value="true"{{if .Checked}} checked{{end}}>
					{{else}}
					<input type="text" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}" placeholder="HH:MM">
					{{end}}
				</p>
				{{end}}
			</fieldset>
			{{end}}
			<button type="submit">Weiter</button>
		</form>
{{template "foot"}}{{end}}`

const donePage = `{{define "done"}}{{template "head"}}
		<h2>Einrichtung abgeschlossen</h2>
		<table>
			{{range .}}
			<tr><td>{{.Day}}</td><td>{{.Hours}}</td></tr>
			{{end}}
		</table>
{{template "foot"}}{{end}}`

const abortPage = `{{define "abort"}}{{template "head"}}
		<p>Der Auslastungsradar ist bereits eingerichtet.</p>
{{template "foot"}}{{end}}`

const errorPage = `{{define "error"}}{{template "head"}}
		<p class="error">{{.}}</p>
		<p><a href="/setup">Einrichtung neu starten</a></p>
{{template "foot"}}{{end}}`
