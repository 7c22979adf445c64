package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reservo/pkg/model"
)

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/reservations?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) Search(equipmentID string, status string, startTime string, endTime string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("equipment_id", equipmentID)

	if status != "" {
		q.Set("status", status)
	}
	if startTime != "" {
		q.Set("start_time", startTime)
	}
	if endTime != "" {
		q.Set("end_time", endTime)
	}

	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/reservations/search?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByNumber(number string) (*Response, error) {
	path := "/api/v1/reservations/number/" + url.PathEscape(number)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByCode(code string) (*Response, error) {
	path := "/api/v1/reservations/code/" + url.PathEscape(code)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) Update(id string, body any) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id)
	return c.httpClient.PATCH(path, body)
}

func (c *ReservationClient) Cancel(id string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.POST(path, nil)
}

func (c *ReservationClient) CheckAvailability(equipmentID string, startTime string, endTime string) (*Response, error) {
	q := url.Values{}
	q.Set("equipment_id", equipmentID)
	q.Set("start_time", startTime)
	q.Set("end_time", endTime)

	path := "/api/v1/availability?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *ReservationClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/reservations", rawBody)
}

func (c *ReservationClient) UpdateRaw(id string, rawBody []byte) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id)
	return c.httpClient.PATCHRaw(path, rawBody)
}

func (c *ReservationClient) DecodeReservation(resp *Response) (*model.Reservation, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode reservation wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var reservation model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservation); err != nil {
		return nil, fmt.Errorf("could not decode reservation json:\n%+v\n%s", resp.ToString(), err)
	}

	return &reservation, nil
}

func (c *ReservationClient) DecodeReservations(resp *Response) ([]*model.Reservation, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var reservations []*model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservations); err != nil {
		return nil, nil, fmt.Errorf("could not decode reservation list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return reservations, metadata, nil
}
