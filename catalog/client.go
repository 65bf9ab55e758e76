package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/verdantmart/storefront/internal/config"
	"github.com/verdantmart/storefront/internal/errors"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.Catalog) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type wireCategory struct {
	Name string `json:"name"`
}

type wireProduct struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       json.Number  `json:"price"`
	Category    wireCategory `json:"category"`
	Images      []string     `json:"images"`
}

func (w wireProduct) product() (Product, error) {
	price, err := decimal.NewFromString(w.Price.String())
	if err != nil {
		return Product{}, fmt.Errorf("failed parsing price=%s with error=%w", w.Price, err)
	}
	return Product{
		ID:          strconv.FormatInt(w.ID, 10),
		Title:       w.Title,
		Description: w.Description,
		Price:       price,
		Category:    w.Category.Name,
		Images:      w.Images,
	}, nil
}

func (cl *Client) ListProducts(c context.Context) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogClient ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogClient ListProducts").
		Str(log.KeyProcess, "fetching products").
		Logger()

	logger.Info().Msg("fetching products")
	wires := []wireProduct{}
	err := cl.getJSON(c, cl.baseURL+"/products", &wires)
	if err != nil {
		err = fmt.Errorf("failed fetching products with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.StoreError{Err: err}
	}

	products := make([]Product, 0, len(wires))
	for _, w := range wires {
		p, err := w.product()
		if err != nil {
			err = fmt.Errorf("failed mapping product with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, errors.StoreError{Err: err}
		}
		products = append(products, p)
	}
	logger.Info().Int(log.KeyProductCount, len(products)).Msg("fetched products")

	return products, nil
}

func (cl *Client) GetProduct(c context.Context, id string) (Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogClient GetProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogClient GetProduct").
		Str(log.KeyProductID, id).
		Str(log.KeyProcess, "fetching product").
		Logger()

	logger.Info().Msg("fetching product")
	wire := wireProduct{}
	err := cl.getJSON(c, cl.baseURL+"/products/"+id, &wire)
	if err != nil {
		err = fmt.Errorf("failed fetching productId=%s with error=%w", id, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, errors.StoreError{Err: err}
	}

	product, err := wire.product()
	if err != nil {
		err = fmt.Errorf("failed mapping productId=%s with error=%w", id, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, errors.StoreError{Err: err}
	}
	logger.Info().Msg("fetched product")

	return product, nil
}

func (cl *Client) getJSON(c context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	resp, err := cl.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed sending request with error=%w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status code=%d", resp.StatusCode)
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	err = decoder.Decode(out)
	if err != nil {
		return fmt.Errorf("failed decoding response body with error=%w", err)
	}
	return nil
}
