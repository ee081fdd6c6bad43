package media

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Uploaded describes a single blob stored by the object-storage service.
type Uploaded struct {
	PublicId string `json:"public_id"`
	Url      string `json:"secure_url"`
}

// Upload pushes an in-memory blob to the object-storage service and blocks
// until the service acknowledges it. Returns the durable public url.
type Upload = func(blob []byte) (Uploaded, error)

// Journal tracks uploads which are not yet referenced by a stored card.
// An entry left behind means the blob is orphaned: upload succeeded but the
// card insert did not. Entries are recorded, never compensated.
type Journal interface {
	Uploaded(m Uploaded) error

	Owned(publicId string) error

	Orphans() ([]Uploaded, error)
}

// Impl of cloudinary upload rest api /v1_1/{cloud_name}/auto/upload.
// Resource type is detected by the service. A fresh uuid is generated per
// call as the public id.
func RestUpload(cloudName string, apiKey string, apiSecret string) Upload {
	return func(blob []byte) (Uploaded, error) {
		agent := fiber.AcquireAgent()
		defer fiber.ReleaseAgent(agent)

		publicId := uuid.New().String()
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		req := agent.Request()
		req.Header.SetMethod(fiber.MethodPost)
		req.SetRequestURI("https://api.cloudinary.com/v1_1/" + cloudName + "/auto/upload")

		args := fiber.AcquireArgs()
		defer fiber.ReleaseArgs(args)
		args.Add("api_key", apiKey)
		args.Add("public_id", publicId)
		args.Add("timestamp", timestamp)
		args.Add("signature", uploadSignature(publicId, timestamp, apiSecret))

		ff := fiber.AcquireFormFile()
		defer fiber.ReleaseFormFile(ff)
		ff.Fieldname = "file"
		ff.Name = publicId
		ff.Content = blob

		err := agent.FileData(ff).MultipartForm(args).Parse()
		if err != nil {
			return Uploaded{}, fmt.Errorf("agent parse: %w", err)
		}

		statusCode, body, errs := agent.Bytes()
		if len(errs) != 0 {
			return Uploaded{}, fmt.Errorf("agent bytes: %v", errs)
		}
		if statusCode != fiber.StatusOK {
			return Uploaded{}, uploadError(statusCode, body)
		}

		var response Uploaded
		if err := json.Unmarshal(body, &response); err != nil {
			return Uploaded{}, fmt.Errorf("response unmarshal: %w", err)
		}
		return response, nil
	}
}

// Hex sha1 of the signed parameters in alphabetical order, with the api
// secret appended - the signature format required by the upload api.
func uploadSignature(publicId string, timestamp string, apiSecret string) string {
	payload := "public_id=" + publicId + "&timestamp=" + timestamp + apiSecret
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func uploadError(statusCode int, body []byte) error {
	type ErrorResponse struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	var response ErrorResponse
	if err := json.Unmarshal(body, &response); err != nil || response.Error.Message == "" {
		return fmt.Errorf("invalid status code %d: %s", statusCode, string(body))
	}
	return fmt.Errorf("upload rejected (%d): %s", statusCode, response.Error.Message)
}
