package server

import "html/template"

var browseTemplate = template.Must(template.New("browse").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Du {{.Path}}</title>
    <style>
        body { font-family: sans-serif; }
        main > div { margin: 1em; }
        div.entry { display: flex; align-items: center; margin: .5em 0; }
        div.entry div { display: inline-block; margin-left: .5em; }
        div.entry div.name { width: 20em; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
        div.entry div.value { width: 7em; text-align: right; }
        div.entry div.graph { width: 7em; height: 1.2em; margin-right: 1em; position: relative; }
        div.graph .text, div.graph .text_small { position: absolute; margin: 0; z-index: 1; }
        div.graph .text { right: .2em; color: white; }
        div.graph .fill { background-color: green; height: 100%; z-index: 0; }
        div.header { font-weight: bold; }
    </style>
</head>
<body>
    <header><h1>Du Summary File Browser</h1></header>
    <main>
        <div>
            <h3>Path: {{.Path}}</h3>
            {{if .UpURL}}<a href="{{.UpURL}}">&lt;&lt; Up</a>{{end}}
            <div class="entry header"><div class="name">Name</div><div class="value">Size (GB)</div><div class="graph">Size %</div></div>
            {{range .Rows}}
            <div class="entry">
                <div class="name" title="{{.Path}}">{{.Name}}</div>
                <div class="value" title="{{.SizeHuman}}">{{.SizeGB}}</div>
                <div class="graph">
                    {{if .Small}}<div class="text_small" style="right: {{.LabelOffset}}%">{{.Percent}}</div>{{else}}<div class="text">{{.Percent}}</div>{{end}}
                    <div class="fill" style="width: {{.Percent}}%"></div>
                </div>
                {{if .DetailsURL}}<div class="details"><a href="{{.DetailsURL}}">Details</a></div>{{end}}
            </div>
            {{end}}
            <div class="entry header"><div class="name">Total</div><div class="value" title="{{.TotalHuman}}">{{.TotalGB}}</div></div>
        </div>
    </main>
</body>
</html>
`))
