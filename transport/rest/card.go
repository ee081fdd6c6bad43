package rest

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/finalqr/qrcard"
	"github.com/finalqr/qrcard/media"
	"github.com/gofiber/fiber/v2"
)

type CardController struct {
	Store   qrcard.CardStore
	Upload  media.Upload
	Journal media.Journal
}

func (c *CardController) InstallTo(app *fiber.App) {
	app.Post("/qrdata", c.serveSubmit)
	app.Get("/users", c.serveCards)
	app.Get("/users/:user_id", c.serveCard)
	app.Put("/users/:id", c.serveSetAllowed)
	app.Delete("/users/:user_id", c.serveDelete)
}

type cardResponse struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	WorkEmail    string `json:"work_email"`
	Organization string `json:"organization"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	YoutubeUrl   string `json:"youtube_url"`
	FacebookUrl  string `json:"facebook_url"`
	LinkdenUrl   string `json:"linkden_url"`
	TwitterUrl   string `json:"twitter_url"`
	UserImage    string `json:"user_image,omitempty"`
	IsAllowed    bool   `json:"isAllowed"`
}

func newCardResponse(card qrcard.Card) cardResponse {
	return cardResponse{
		Id:           string(card.Id),
		Name:         card.Name,
		Email:        card.Email,
		WorkEmail:    card.WorkEmail,
		Organization: card.Organization,
		Phone:        card.Phone,
		Address:      card.Address,
		YoutubeUrl:   card.YoutubeUrl,
		FacebookUrl:  card.FacebookUrl,
		LinkdenUrl:   card.LinkdenUrl,
		TwitterUrl:   card.TwitterUrl,
		UserImage:    card.UserImage,
		IsAllowed:    card.Allowed,
	}
}

// Creation is the single endpoint echoing underlying error messages back to
// the caller.
func submitError(err error) error {
	return fiber.NewError(fiber.StatusInternalServerError, "Error while submitting: "+err.Error())
}

func (c *CardController) serveSubmit(ctx *fiber.Ctx) error {
	draft := qrcard.CardDraft{
		Name:         ctx.FormValue("name"),
		Email:        ctx.FormValue("email"),
		WorkEmail:    ctx.FormValue("work_email"),
		Organization: ctx.FormValue("organization"),
		Phone:        ctx.FormValue("phone"),
		Address:      ctx.FormValue("address"),
		YoutubeUrl:   ctx.FormValue("youtube_url"),
		FacebookUrl:  ctx.FormValue("facebook_url"),
		LinkdenUrl:   ctx.FormValue("linkden_url"),
		TwitterUrl:   ctx.FormValue("twitter_url"),
	}

	var uploaded media.Uploaded
	file, err := ctx.FormFile("user_image")
	if err == nil && file != nil {
		blob, err := readMultipartFile(file)
		if err != nil {
			return submitError(err)
		}

		// The card must not be stored without its photo url, so the store
		// write waits here until the upload is acknowledged.
		uploaded, err = c.Upload(blob)
		if err != nil {
			requestLog(ctx).WithError(err).Errorln("Media upload failed.")
			return submitError(err)
		}
		if err := c.Journal.Uploaded(uploaded); err != nil {
			requestLog(ctx).WithError(err).Warningln("Could not journal upload.")
		}
		draft.UserImage = uploaded.Url
	}

	card, err := c.Store.Create(ctx.Context(), draft)
	if err != nil {
		// The upload (if any) is now orphaned. Left in the journal on purpose.
		requestLog(ctx).WithError(err).Errorln("Card insert failed.")
		return submitError(err)
	}
	if uploaded.PublicId != "" {
		if err := c.Journal.Owned(uploaded.PublicId); err != nil {
			requestLog(ctx).WithError(err).Warningln("Could not mark upload owned.")
		}
	}

	return ctx.Status(fiber.StatusCreated).JSON(map[string]interface{}{
		"message": "Submitted successfully",
		"qrdata":  newCardResponse(card),
		"userId":  string(card.Id),
	})
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file: %w", err)
	}
	defer f.Close()

	blob, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}
	return blob, nil
}

func (c *CardController) serveCards(ctx *fiber.Ctx) error {
	cards, err := c.Store.All(ctx.Context())
	if err != nil {
		return fmt.Errorf("get all cards: %w", err)
	}

	mapped := make([]cardResponse, len(cards))
	for i, card := range cards {
		mapped[i] = newCardResponse(card)
	}
	return ctx.JSON(mapped)
}

func (c *CardController) serveCard(ctx *fiber.Ctx) error {
	id := ctx.Params("user_id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no user id")
	}

	card, err := c.Store.ById(ctx.Context(), qrcard.CardId(id))
	if err != nil {
		if errors.Is(err, qrcard.ErrCardNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		} else {
			return fmt.Errorf("get card by id: %w", err)
		}
	}
	if !card.Allowed {
		return fiber.NewError(fiber.StatusForbidden, "User is blocked")
	}
	return ctx.JSON(newCardResponse(card))
}

func (c *CardController) serveSetAllowed(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no user id")
	}
	body := struct {
		IsAllowed bool `json:"isAllowed"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	card, err := c.Store.SetAllowed(ctx.Context(), qrcard.CardId(id), body.IsAllowed)
	if err != nil {
		if errors.Is(err, qrcard.ErrCardNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		} else {
			return fmt.Errorf("set card allowed: %w", err)
		}
	}
	return ctx.JSON(newCardResponse(card))
}

func (c *CardController) serveDelete(ctx *fiber.Ctx) error {
	id := ctx.Params("user_id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no user id")
	}

	err := c.Store.Delete(ctx.Context(), qrcard.CardId(id))
	if err != nil {
		if errors.Is(err, qrcard.ErrCardNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		} else {
			return fmt.Errorf("delete card: %w", err)
		}
	}
	return ctx.JSON(map[string]string{"message": "User deleted successfully"})
}
