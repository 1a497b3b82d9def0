// Package web ships the HTML templates inside the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

func Templates() http.FileSystem {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// NewEngine returns the fiber view engine for the embedded templates.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(Templates(), ".html")
	engine.AddFunc("pageNumbers", pageNumbers)
	return engine
}

func pageNumbers(total int) []int {
	numbers := make([]int, total)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
