package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

type image struct {
	data []byte
	mime string
	ext  string
}

// loadImage resolves an image reference to bytes. References are either
// data: URIs or http(s) URLs.
func loadImage(ctx context.Context, client *resty.Client, ref string) (*image, error) {
	var data []byte
	if strings.HasPrefix(ref, "data:") {
		decoded, err := decodeDataURI(ref)
		if err != nil {
			return nil, err
		}
		data = decoded
	} else {
		resp, err := client.R().SetContext(ctx).Get(ref)
		if err != nil {
			return nil, fmt.Errorf("fetching image: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode())
		}
		data = resp.Body()
	}

	kind, err := filetype.Image(data)
	if err != nil || kind == types.Unknown {
		return nil, ErrUnsupportedFile
	}
	return &image{data: data, mime: kind.MIME.Value, ext: kind.Extension}, nil
}

func decodeDataURI(ref string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(unescaped), nil
}

func encodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
