package cocktails

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
	"github.com/fgmcolas/ShakeItUp/internal/logging"
	"github.com/fgmcolas/ShakeItUp/internal/media"
)

// Store is the slice of the catalog repository the handlers need.
type Store interface {
	Create(ctx context.Context, c *Cocktail) error
	FindAll(ctx context.Context) ([]Cocktail, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*Cocktail, error)
}

// ImageStore persists image artifacts. Put must complete before the catalog
// record referencing the artifact is inserted; Remove is the compensating
// action when that insert fails.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type Handler struct {
	Catalog Store
	Images  ImageStore
	Log     logging.Logger
}

func NewHandler(catalog Store, images ImageStore, log logging.Logger) *Handler {
	return &Handler{Catalog: catalog, Images: images, Log: log}
}

type createRequest struct {
	Name           string   `json:"name"`
	Instructions   string   `json:"instructions"`
	Alcoholic      bool     `json:"alcoholic"`
	OfficialRecipe bool     `json:"officialRecipe"`
	FlavorStyle    string   `json:"flavorStyle"`
	Ingredients    []string `json:"ingredients"`
}

type createResponse struct {
	Message  string    `json:"message"`
	Cocktail WithStats `json:"cocktail"`
}

// Create accepts either multipart form data (with an optional image file and
// ingredients as a JSON string) or a plain JSON body.
func (h *Handler) Create(c *fiber.Ctx) error {
	var (
		cocktail Cocktail
		imageKey string
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		cocktail = Cocktail{
			Name:           strings.TrimSpace(c.FormValue("name")),
			Instructions:   strings.TrimSpace(c.FormValue("instructions")),
			Alcoholic:      c.FormValue("alcoholic") == "true",
			OfficialRecipe: c.FormValue("officialRecipe") == "true",
			FlavorStyle:    strings.TrimSpace(c.FormValue("flavorStyle")),
		}

		var values []string
		if form, err := c.MultipartForm(); err == nil && form != nil {
			values = form.Value["ingredients"]
		}
		cocktail.Ingredients = ParseIngredients(values)
	} else {
		var req createRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid body")
		}
		cocktail = Cocktail{
			Name:           strings.TrimSpace(req.Name),
			Instructions:   strings.TrimSpace(req.Instructions),
			Alcoholic:      req.Alcoholic,
			OfficialRecipe: req.OfficialRecipe,
			FlavorStyle:    strings.TrimSpace(req.FlavorStyle),
			Ingredients:    NormalizeIngredients(req.Ingredients),
		}
	}

	if err := ValidateName(cocktail.Name); err != nil {
		return err
	}
	if err := ValidateInstructions(cocktail.Instructions); err != nil {
		return err
	}
	if err := ValidateIngredients(cocktail.Ingredients); err != nil {
		return err
	}
	if len(cocktail.FlavorStyle) > FlavorStyleMaxLen {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field: "flavorStyle", Message: "flavorStyle is too long",
		})
	}

	ctx := userContext(c)

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		url, key, upErr := h.storeImage(ctx, fh)
		if upErr != nil {
			return upErr
		}
		cocktail.Image = url
		imageKey = key
	}

	if err := h.Catalog.Create(ctx, &cocktail); err != nil {
		// The image was written before the insert; roll it back so a failed
		// create leaves no orphaned artifact behind.
		if imageKey != "" {
			if rmErr := h.Images.Remove(ctx, imageKey); rmErr != nil {
				h.Log.Warn(ctx, "image rollback failed", "key", imageKey, "err", rmErr)
			}
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(createResponse{
		Message:  "cocktail created",
		Cocktail: cocktail.Stats(),
	})
}

// storeImage validates the upload (size cap, sniffed content type) and writes
// it to the object store, returning the public URL and the object key.
func (h *Handler) storeImage(ctx context.Context, fh *multipart.FileHeader) (url, key string, err error) {
	f, err := fh.Open()
	if err != nil {
		return "", "", apperr.Validation("invalid data", apperr.FieldError{
			Field: "image", Message: "unreadable upload",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
	if err != nil {
		return "", "", apperr.Internal(fmt.Errorf("read upload: %w", err))
	}
	if len(data) > media.MaxImageBytes {
		return "", "", apperr.Validation("invalid data", apperr.FieldError{
			Field: "image", Message: "image exceeds 2 MiB",
		})
	}

	contentType, err := media.DetectImageType(data)
	if err != nil {
		return "", "", err
	}

	key = uuid.NewString() + media.ExtensionFor(contentType)
	url, err = h.Images.Put(ctx, key, data, contentType)
	if err != nil {
		return "", "", apperr.Internal(fmt.Errorf("store image: %w", err))
	}
	return url, key, nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	all, err := h.Catalog.FindAll(userContext(c))
	if err != nil {
		return err
	}

	out := make([]WithStats, 0, len(all))
	for _, cocktail := range all {
		out = append(out, cocktail.Stats())
	}
	return c.JSON(out)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := ParseID(c.Params("id"))
	if err != nil {
		return err
	}

	cocktail, err := h.Catalog.FindByID(userContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(cocktail.Stats())
}

// Card renders a printable recipe card for a cocktail.
func (h *Handler) Card(c *fiber.Ctx) error {
	id, err := ParseID(c.Params("id"))
	if err != nil {
		return err
	}

	cocktail, err := h.Catalog.FindByID(userContext(c), id)
	if err != nil {
		return err
	}

	pdf, err := BuildRecipeCard(cocktail)
	if err != nil {
		return apperr.Internal(fmt.Errorf("build recipe card: %w", err))
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", cocktail.Name+".pdf"))
	return c.Send(pdf)
}

// ParseID validates a caller-supplied identifier before any lookup.
func ParseID(raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return bson.ObjectID{}, apperr.Validation("invalid data", apperr.FieldError{
			Field: "id", Message: "invalid id",
		})
	}
	return id, nil
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
