// model/bookModel.go
package model

type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	PublishYear int    `json:"publish_year"`
	Stock       int    `json:"stock"`
	Shelf       string `json:"shelf"`
}

// BookSearch holds the optional catalog search filters. Zero values mean
// "no filter on this field".
type BookSearch struct {
	Category string
	Author   string
	Year     int
	Keyword  string
}

func (f BookSearch) Empty() bool {
	return f.Category == "" && f.Author == "" && f.Year == 0 && f.Keyword == ""
}
