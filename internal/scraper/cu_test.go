package scraper

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cuFragmentHTML = `
<ul>
  <li class="prod_list">
    <div class="prod_img_box"><img class="prod_img" src="//image.cu.com/cola.jpg" /></div>
    <div class="name">코카콜라 500ml</div>
    <div class="price"><strong>2,500</strong>원</div>
  </li>
  <li class="prod_list">
    <div class="name">포카칩 오리지널</div>
    <div class="price"><strong>1,800</strong>원</div>
  </li>
</ul>
`

func TestCUScraperFetchItems(t *testing.T) {
	scraper := NewCUScraper("http://example.com/plusAjax.do", nil)

	var requests []url.Values
	scraper.postFunc = func(rawURL string, form url.Values) (io.Reader, error) {
		requests = append(requests, form)
		// First page of each event type has products, the second is empty.
		if form.Get("pageIndex") == "1" {
			return strings.NewReader(cuFragmentHTML), nil
		}
		return strings.NewReader("<ul></ul>"), nil
	}

	items, err := scraper.FetchItems(context.Background())
	require.NoError(t, err)

	// Two products per event type, deduplicated by name and condition.
	require.Len(t, items, 4)

	cola := items[0]
	assert.Equal(t, "코카콜라 500ml", cola.ProductName)
	assert.Equal(t, 2500, cola.BasePrice)
	assert.Equal(t, 2500, cola.SalePrice)
	assert.Equal(t, 1250, cola.EffectiveUnitPrice)
	assert.Equal(t, CondOnePlusOne, cola.DiscountCondition)
	assert.Equal(t, "https://image.cu.com/cola.jpg", cola.ImageURL)
	assert.Equal(t, StoreCU, cola.Store)

	twoPlusOne := items[2]
	assert.Equal(t, CondTwoPlusOne, twoPlusOne.DiscountCondition)
	assert.Equal(t, 5000, twoPlusOne.SalePrice)
	assert.Equal(t, 1666, twoPlusOne.EffectiveUnitPrice)

	// Two pages per event type: one with rows, one empty stop page.
	require.Len(t, requests, 4)
	assert.Equal(t, "23", requests[0].Get("searchCondition"))
	assert.Equal(t, "24", requests[2].Get("searchCondition"))
}

func TestCUScraperSkipsUnparsableRows(t *testing.T) {
	scraper := NewCUScraper("http://example.com/plusAjax.do", nil)
	scraper.postFunc = func(rawURL string, form url.Values) (io.Reader, error) {
		if form.Get("pageIndex") != "1" || form.Get("searchCondition") != "23" {
			return strings.NewReader("<ul></ul>"), nil
		}
		return strings.NewReader(`
			<ul>
				<li class="prod_list"><div class="name"></div><div class="price"><strong>1,000</strong></div></li>
				<li class="prod_list"><div class="name">가격없는상품</div><div class="price"><strong></strong></div></li>
				<li class="prod_list"><div class="name">정상상품</div><div class="price"><strong>1,000</strong></div></li>
			</ul>`), nil
	}

	items, err := scraper.FetchItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "정상상품", items[0].ProductName)
}

func TestCUScraperContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := NewCUScraper("http://example.com/plusAjax.do", nil)
	scraper.postFunc = func(rawURL string, form url.Values) (io.Reader, error) {
		t.Fatal("post should not run after cancel")
		return nil, nil
	}

	_, err := scraper.FetchItems(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
