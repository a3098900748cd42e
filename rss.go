package psiweb

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
)

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.Articles(c.Request().Context(), 20, 0)
	if err != nil {
		return err
	}

	feed := &feeds.Feed{
		Title:       a.Config.Name,
		Link:        &feeds.Link{Href: a.Config.URL},
		Description: a.Config.Description,
		Created:     time.Now(),
	}
	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, art := range articles {
		articleURL := BuildURL(a.Config.URL, "blog", art.Slug)
		item := &feeds.Item{
			Title:       art.Title,
			Link:        &feeds.Link{Href: articleURL},
			Id:          articleURL,
			Description: art.Summary,
			Created:     art.PublishedAt,
			Updated:     art.UpdatedAt,
		}
		if art.AuthorName != "" {
			item.Author = &feeds.Author{Name: art.AuthorName}
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.String(http.StatusOK, rss)
}
