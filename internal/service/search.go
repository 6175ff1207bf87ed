package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/campusprint/print-service/internal/models"
)

// SearchOrders queries the orders index by file name and location with
// fuzzy matching, optionally restricted to one pickup location. Availability
// depends on elasticsearch being configured.
func SearchOrders(ctx context.Context, es *elasticsearch.Client, index, query, location string, from, size int) (int64, []models.Order, error) {
	match := map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":     query,
			"fields":    []string{"file_name^2", "spec.location"},
			"fuzziness": "AUTO",
		},
	}

	var q map[string]interface{}
	if location != "" {
		q = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": match,
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"spec.location.keyword": location},
				},
			},
		}
	} else {
		q = match
	}

	body := map[string]interface{}{
		"query": q,
		"from":  from,
		"size":  size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("%w: encode search body: %v", ErrValidation, err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("%w: elasticsearch: %s", ErrGatewayUnavailable, res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Order `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("%w: decode search response: %v", ErrGatewayUnavailable, err)
	}

	orders := make([]models.Order, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		orders[i] = hit.Source
	}
	return r.Hits.Total.Value, orders, nil
}
