package parser

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var refPattern = regexp.MustCompile(`\[\[([:/\-\w]+)`)

// Links собирает из HTML внутренние ссылки: href у <a>/<link> и src у
// <script>/<img>, только начинающиеся с "/". Ведущий слэш отрезается
func Links(data string) (map[string]struct{}, error) {
	doc, err := html.Parse(strings.NewReader(data))
	if err != nil {
		return nil, err
	}
	paths := make(map[string]struct{})
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			attrKey := ""
			switch n.Data {
			case "a", "link":
				attrKey = "href"
			case "script", "img":
				attrKey = "src"
			}
			if attrKey != "" {
				for _, a := range n.Attr {
					if a.Key != attrKey || !strings.HasPrefix(a.Val, "/") {
						continue
					}
					u, err := url.Parse(a.Val)
					if err != nil {
						continue
					}
					if p := strings.TrimPrefix(u.Path, "/"); p != "" {
						paths[p] = struct{}{}
					}
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return paths, nil
}

// Refs вытаскивает из вики-разметки ссылки вида [[ns:page]],
// двоеточия пространств имён превращаются в "/"
func Refs(text string) map[string]struct{} {
	paths := make(map[string]struct{})
	for _, m := range refPattern.FindAllStringSubmatch(text, -1) {
		if strings.HasPrefix(m[1], "http") {
			continue
		}
		paths[strings.ReplaceAll(m[1], ":", "/")] = struct{}{}
	}
	return paths
}

// EditText достаёт сырую разметку из единственной textarea страницы
// редактирования; если её нет — отдаёт сериализованный документ целиком
func EditText(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	var areas []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "textarea" {
			areas = append(areas, n)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	if len(areas) == 1 {
		var text strings.Builder
		for ch := areas[0].FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.TextNode {
				text.WriteString(ch.Data)
			}
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
	}
	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}
