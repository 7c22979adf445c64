package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reservo/pkg/model"
)

type SeriesClient struct {
	httpClient *HttpClient
}

func NewSeriesClient(baseUrl string) *SeriesClient {
	return &SeriesClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *SeriesClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/series", body)
}

func (c *SeriesClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/series?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *SeriesClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/series/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *SeriesClient) GetReservations(id string, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/series/id/%s/reservations?limit=%d&offset=%d", url.PathEscape(id), limit, offset)
	return c.httpClient.GET(path)
}

func (c *SeriesClient) Update(id string, body any) (*Response, error) {
	path := "/api/v1/series/id/" + url.PathEscape(id)
	return c.httpClient.PATCH(path, body)
}

func (c *SeriesClient) Cancel(id string) (*Response, error) {
	path := "/api/v1/series/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.POST(path, nil)
}

func (c *SeriesClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/series", rawBody)
}

func (c *SeriesClient) UpdateRaw(id string, rawBody []byte) (*Response, error) {
	path := "/api/v1/series/id/" + url.PathEscape(id)
	return c.httpClient.PATCHRaw(path, rawBody)
}

func (c *SeriesClient) DecodeSeries(resp *Response) (*model.RecurringSeries, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode series wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var series model.RecurringSeries
	if err := json.Unmarshal(wrapper.Data, &series); err != nil {
		return nil, fmt.Errorf("could not decode series json:\n%+v\n%s", resp.ToString(), err)
	}

	return &series, nil
}

func (c *SeriesClient) DecodeSeriesList(resp *Response) ([]*model.RecurringSeries, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var list []*model.RecurringSeries
	if err := json.Unmarshal(wrapper.Data, &list); err != nil {
		return nil, nil, fmt.Errorf("could not decode series list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return list, metadata, nil
}
