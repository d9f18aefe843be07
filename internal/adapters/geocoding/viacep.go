package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/obs"
	"freight-service/internal/ports"
	"net/http"
	"strings"
)

// ViaCEPClient resolves Brazilian postal codes through the ViaCEP API
// (GET /ws/{cep}/json/).
type ViaCEPClient struct {
	httpClient
	baseURL string
}

var _ ports.PostalLookup = (*ViaCEPClient)(nil)

func NewViaCEPClient(session *http.Client, baseURL string) *ViaCEPClient {
	return &ViaCEPClient{
		httpClient: newHTTPClient(session, nil),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type viaCEPResponse struct {
	CEP        string          `json:"cep"`
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	Erro       json.RawMessage `json:"erro"`
}

// ViaCEP signals an unknown code with "erro": true, and newer deployments
// send the string "true".
func (r viaCEPResponse) notFound() bool {
	s := strings.Trim(strings.TrimSpace(string(r.Erro)), `"`)
	return s == "true"
}

// LookupPostalCode expects an already normalized 8-digit code.
func (c *ViaCEPClient) LookupPostalCode(
	ctx context.Context,
	code string,
) (_ domain.PostalAddress, err error) {
	defer obs.Time(ctx, "viacep.LookupPostalCode")(&err)

	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, code)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		var he *httpStatusError
		// ViaCEP answers 400 for syntactically invalid codes.
		if errors.As(err, &he) && he.Code == http.StatusBadRequest {
			return domain.PostalAddress{}, ports.ErrPostalCodeNotFound
		}
		return domain.PostalAddress{}, fmt.Errorf("lookup postal code %s: %w", code, err)
	}
	defer resp.Body.Close()

	var decoded viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.PostalAddress{}, fmt.Errorf("decode viacep response: %w", err)
	}

	if decoded.notFound() {
		return domain.PostalAddress{}, ports.ErrPostalCodeNotFound
	}

	return domain.PostalAddress{
		PostalCode:   code,
		Street:       decoded.Logradouro,
		Neighborhood: decoded.Bairro,
		City:         decoded.Localidade,
		State:        decoded.UF,
	}, nil
}
