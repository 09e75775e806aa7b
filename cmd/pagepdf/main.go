// Package main provides the pagepdf command.
//
// pagepdf fetches a web page, keeps the first element matching a CSS
// selector, embeds its images and prints it to PDF with headless Chrome.
//
// Usage:
//
//	pagepdf https://example.com/story --selector div.page
//	pagepdf render storybody.html storybody.pdf
//
// See --help for all available options.
package main

func main() {
	Execute()
}
