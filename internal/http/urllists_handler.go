package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/urlists"
)

// URLListView is the API shape of a saved URL list.
type URLListView struct {
	Name      string    `json:"name"`
	SiteURL   string    `json:"site_url"`
	URLs      []string  `json:"urls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// URLListCreateRequest is the body for saving a named list.
type URLListCreateRequest struct {
	Name    string   `json:"name"`
	SiteURL string   `json:"site_url"`
	URLs    []string `json:"urls"`
}

// URLListParseRequest carries pasted text or CSV content to turn into a URL
// list. Format is "text" (default) or "csv".
type URLListParseRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

func urlListView(list *urlists.URLList) URLListView {
	return URLListView{
		Name:      list.Name,
		SiteURL:   list.SiteURL,
		URLs:      list.Entries(),
		CreatedAt: list.CreatedAt,
		UpdatedAt: list.UpdatedAt,
	}
}

// URLListIndexAction lists every saved URL list.
func URLListIndexAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lists, err := urlists.GetAllLists(deps.DB)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		views := make([]URLListView, 0, len(lists))
		for i := range lists {
			views = append(views, urlListView(&lists[i]))
		}
		return c.JSON(fiber.Map{"lists": views})
	}
}

// URLListCreateAction saves a named list, replacing an existing list of the
// same name. Invalid entries are dropped and reported back.
func URLListCreateAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req URLListCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidArgument(c, "malformed request body")
		}

		if strings.TrimSpace(req.Name) == "" {
			return invalidArgument(c, "name is required")
		}

		valid, rejected := urlists.Validate(req.URLs)
		if len(valid) == 0 {
			return invalidArgument(c, "no valid urls in list")
		}

		list, err := urlists.SaveList(deps.DB, strings.TrimSpace(req.Name), req.SiteURL, valid)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"list":     urlListView(list),
			"rejected": rejected,
		})
	}
}

// URLListShowAction returns one saved list by name.
func URLListShowAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := urlists.GetListByName(deps.DB, c.Params("name"))
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}
		return c.JSON(urlListView(list))
	}
}

// URLListDeleteAction removes one saved list by name.
func URLListDeleteAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := urlists.DeleteList(deps.DB, c.Params("name")); err != nil {
			return serviceError(c, deps.Logger, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// URLListParseAction extracts page URLs from pasted text or CSV content
// without saving anything.
func URLListParseAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req URLListParseRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidArgument(c, "malformed request body")
		}

		var valid, rejected []string
		switch req.Format {
		case "", "text":
			valid, rejected = urlists.ParseText(req.Content)
		case "csv":
			var err error
			valid, rejected, err = urlists.ParseCSV(strings.NewReader(req.Content))
			if err != nil {
				return invalidArgument(c, err.Error())
			}
		default:
			return invalidArgument(c, "format must be text or csv")
		}

		return c.JSON(fiber.Map{
			"valid":    valid,
			"rejected": rejected,
		})
	}
}
