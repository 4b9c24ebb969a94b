package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// Client клиент справочника мастеров и услуг
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента справочника
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetBarber получает мастера по ID
func (c *Client) GetBarber(ctx context.Context, barberID int64) (*domain.Barber, error) {
	var barber Barber
	url := fmt.Sprintf("%s/internal/barbers/%d", c.baseURL, barberID)

	if err := c.get(ctx, url, ErrBarberNotFound, &barber); err != nil {
		if err != ErrBarberNotFound {
			c.log.Error("GetBarber: barber_id=%d: %v", barberID, err)
		}
		return nil, err
	}

	return barber.ToDomain(), nil
}

// GetService получает услугу по ID
func (c *Client) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	var service Service
	url := fmt.Sprintf("%s/internal/services/%d", c.baseURL, serviceID)

	if err := c.get(ctx, url, ErrServiceNotFound, &service); err != nil {
		if err != ErrServiceNotFound {
			c.log.Error("GetService: service_id=%d: %v", serviceID, err)
		}
		return nil, err
	}

	return service.ToDomain(), nil
}

func (c *Client) get(ctx context.Context, url string, notFound error, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode == http.StatusOK:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusNotFound:
		return notFound
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status code %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
