package playstation_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/mocks"
	"github.com/gamedex/gd-indexer/internal/providers"
	"github.com/gamedex/gd-indexer/internal/providers/playstation"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const testAPIURL = "https://web.np.playstation.com/api/graphql/v1"

func setupTestClient(t *testing.T) (providers.Client, *mocks.MockHTTPClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := playstation.NewClient(httpClient, nil, testAPIURL, "gd-indexer/1.0", adapter.NewJSON())
	return client, httpClient
}

func TestKey(t *testing.T) {
	client, _ := setupTestClient(t)
	assert.Equal(t, domain.ProviderPlayStation, client.Key())
}

func TestDiscover(t *testing.T) {
	client, httpClient := setupTestClient(t)

	body := `{"data":{"categoryGridRetrieve":{"products":[
		{"id":"EP0700-PPSA01962_00-0245970948917020","name":"ELDEN RING"},
		{"id":"EP9000-PPSA01284_00-0000000000000GOW","name":"God of War Ragnarok"}
	]}}}`

	var capturedURL string
	var capturedHeaders map[string]string
	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u string, headers map[string]string) ([]byte, error) {
			capturedURL = u
			capturedHeaders = headers
			return []byte(body), nil
		})

	ids, err := client.Discover(context.Background(), "en-us", 2, 24)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"EP0700-PPSA01962_00-0245970948917020",
		"EP9000-PPSA01284_00-0000000000000GOW",
	}, ids)

	parsed, err := url.Parse(capturedURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "categoryGridRetrieve", q.Get("operationName"))
	assert.Contains(t, q.Get("variables"), `"offset":48`)
	assert.Contains(t, q.Get("variables"), `"size":24`)
	assert.Contains(t, q.Get("extensions"), "sha256Hash")
	assert.Equal(t, "en-US", capturedHeaders["x-psn-store-locale-override"])
	assert.Equal(t, "gd-indexer/1.0", capturedHeaders["user-agent"])
}

func TestDiscover_GraphQLError(t *testing.T) {
	client, httpClient := setupTestClient(t)

	body := `{"data":null,"errors":[{"message":"PersistedQueryNotFound"}]}`
	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(body), nil)

	_, err := client.Discover(context.Background(), "en-us", 0, 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PersistedQueryNotFound")
}

func TestDiscover_HTTPError(t *testing.T) {
	client, httpClient := setupTestClient(t)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := client.Discover(context.Background(), "en-us", 0, 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category grid request failed")
}

func TestFetchItem(t *testing.T) {
	client, httpClient := setupTestClient(t)

	body := `{"data":{"productRetrieve":{
		"id":"EP0700-PPSA01962_00-0245970948917020",
		"name":"ELDEN RING",
		"platforms":["PS4","PS5"],
		"releaseDate":"2022-02-25T00:00:00Z",
		"publisherName":"Bandai Namco Entertainment",
		"localizedGenres":[{"value":"Role Playing Games"},{"value":"Action"}],
		"starRating":{"averageRating":4.71,"totalRatingsCount":216007},
		"media":[
			{"url":"https://image.api.playstation.com/cover.png","type":"IMAGE","role":"MASTER"},
			{"url":"https://image.api.playstation.com/shot1.png","type":"IMAGE","role":"SCREENSHOT"},
			{"url":"https://video.api.playstation.com/trailer.mp4","type":"VIDEO","role":"PREVIEW"}
		],
		"webctas":[
			{"type":"ADD_TO_CART","price":{"basePriceValue":5999,"discountedValue":5999,"currencyCode":"USD","isFree":false}}
		]
	}}}`

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u string, _ map[string]string) ([]byte, error) {
			assert.Contains(t, u, "operationName=productRetrieve")
			assert.Contains(t, u, url.QueryEscape(`"productId":"EP0700-PPSA01962_00-0245970948917020"`))
			return []byte(body), nil
		})

	item, err := client.FetchItem(context.Background(), "EP0700-PPSA01962_00-0245970948917020", "en-us")
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderPlayStation, item.Provider)
	assert.Equal(t, "ELDEN RING", item.Name)
	assert.Equal(t, []string{"PS4", "PS5"}, item.Platforms)
	assert.Equal(t, []string{"RPG", "Action"}, item.Genres)
	assert.Equal(t, "Bandai Namco Entertainment", item.Publisher)
	require.NotNil(t, item.ReleaseDate)
	assert.Equal(t, time.Date(2022, 2, 25, 0, 0, 0, 0, time.UTC), item.ReleaseDate.UTC())
	require.NotNil(t, item.Rating)
	assert.InDelta(t, 4.71, *item.Rating, 0.001)
	require.NotNil(t, item.RatingCount)
	assert.Equal(t, int64(216007), *item.RatingCount)
	assert.Equal(t, "en-us", item.Region)
	assert.NotNil(t, item.Raw)

	require.Len(t, item.Media.Images, 2)
	assert.Equal(t, domain.MediaRoleCover, item.Media.Images[0].Role)
	assert.Equal(t, domain.MediaRoleScreenshot, item.Media.Images[1].Role)
	require.Len(t, item.Media.Videos, 1)

	require.NotNil(t, item.Price)
	require.NotNil(t, item.Price.AmountMinor)
	assert.Equal(t, int64(5999), *item.Price.AmountMinor)
	assert.Equal(t, "USD", item.Price.Currency)
	assert.False(t, item.Price.Free)
	assert.Contains(t, item.Price.URL, "store.playstation.com/en-us/product/")
}

func TestFetchItem_NotFoundInRegion(t *testing.T) {
	client, httpClient := setupTestClient(t)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"data":{"productRetrieve":null}}`), nil)

	_, err := client.FetchItem(context.Background(), "EP0700-PPSA01962_00-0245970948917020", "ja-jp")
	assert.ErrorIs(t, err, domain.ErrNotFoundInRegion)
}

func TestFetchItem_MissingName(t *testing.T) {
	client, httpClient := setupTestClient(t)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"data":{"productRetrieve":{"id":"X","name":"  "}}}`), nil)

	_, err := client.FetchItem(context.Background(), "X", "en-us")
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestFetchItem_FreeToPlay(t *testing.T) {
	client, httpClient := setupTestClient(t)

	body := `{"data":{"productRetrieve":{
		"id":"EP0002-PPSA01521_00-000000FORTNITE00",
		"name":"Fortnite",
		"webctas":[{"type":"DOWNLOAD","price":{"basePriceValue":0,"discountedValue":0,"currencyCode":"USD","isFree":true}}]
	}}}`
	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(body), nil)

	item, err := client.FetchItem(context.Background(), "EP0002-PPSA01521_00-000000FORTNITE00", "en-us")
	require.NoError(t, err)
	require.NotNil(t, item.Price)
	assert.True(t, item.Price.Free)
	require.NotNil(t, item.Price.AmountMinor)
	assert.Zero(t, *item.Price.AmountMinor)
	assert.True(t, item.Price.HasAmount())
}

func TestFetchPrice(t *testing.T) {
	client, httpClient := setupTestClient(t)

	body := `{"data":{"productRetrieve":{
		"id":"EP0700-PPSA01962_00-0245970948917020",
		"webctas":[
			{"type":"ADD_TO_CART","price":{"basePriceValue":8618,"discountedValue":8618,"currencyCode":"JPY","isFree":false}},
			{"type":"UPSELL_PS_PLUS_DISCOUNT","price":{"basePriceValue":8618,"discountedValue":6894,"currencyCode":"JPY","isFree":false}}
		]
	}}}`

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u string, headers map[string]string) ([]byte, error) {
			assert.Contains(t, u, "operationName=productRetrieveForCtasWithPrice")
			assert.Equal(t, "ja-JP", headers["x-psn-store-locale-override"])
			return []byte(body), nil
		})

	quote, err := client.FetchPrice(context.Background(), "EP0700-PPSA01962_00-0245970948917020", "ja-jp")
	require.NoError(t, err)
	assert.Equal(t, "JPY", quote.Currency)
	require.NotNil(t, quote.AmountMinor)
	assert.Equal(t, int64(8618), *quote.AmountMinor)
}

func TestFetchPrice_NoPriceData(t *testing.T) {
	client, httpClient := setupTestClient(t)

	body := `{"data":{"productRetrieve":{"id":"X","webctas":[{"type":"INFO","price":null}]}}}`
	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(body), nil)

	_, err := client.FetchPrice(context.Background(), "X", "en-us")
	assert.ErrorIs(t, err, domain.ErrNoPriceData)
}

func TestFetchPrice_NotFoundInRegion(t *testing.T) {
	client, httpClient := setupTestClient(t)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"data":{"productRetrieve":null}}`), nil)

	_, err := client.FetchPrice(context.Background(), "X", "de-de")
	assert.ErrorIs(t, err, domain.ErrNotFoundInRegion)
}

func TestLocale(t *testing.T) {
	cases := map[string]string{
		"en-us":   "en-US",
		"ja-jp":   "ja-JP",
		"EN_GB":   "en-GB",
		"us":      "en-US",
		" de-de ": "de-DE",
	}
	for region, want := range cases {
		assert.Equal(t, want, playstation.Locale(region), "region %q", region)
	}
}

func TestFetchItem_MalformedJSON(t *testing.T) {
	client, httpClient := setupTestClient(t)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"data":`), nil)

	_, err := client.FetchItem(context.Background(), "X", "en-us")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to decode product"))
}
