package reservoir

import "encoding/json"

// DTOs raw de la API de Reservoir. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- GET /sales/v6 ---

// salesResponse es la respuesta paginada de GET /sales/v6.
type salesResponse struct {
	Sales        []rawSale `json:"sales"`
	Continuation string    `json:"continuation"`
}

// rawSale es una venta tal como la devuelve la API.
type rawSale struct {
	ID        string      `json:"id"`
	SaleID    string      `json:"saleId"`
	OrderHash string      `json:"orderHash"`
	OrderSide string      `json:"orderSide"` // "ask" | "bid"
	Token     rawToken    `json:"token"`
	Price     rawPrice    `json:"price"`
	Timestamp json.Number `json:"timestamp"`
}

// rawToken identifica el token vendido.
type rawToken struct {
	Contract   string        `json:"contract"`
	TokenID    string        `json:"tokenId"`
	Name       string        `json:"name"`
	Image      string        `json:"image"`
	Collection rawCollection `json:"collection"`
}

// rawCollection es la colección a la que pertenece el token.
type rawCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// rawPrice es el precio anidado de Reservoir. Amount.USD puede faltar.
type rawPrice struct {
	Currency struct {
		Symbol string `json:"symbol"`
	} `json:"currency"`
	Amount struct {
		Decimal *float64 `json:"decimal"`
		USD     *float64 `json:"usd"`
	} `json:"amount"`
}

// --- GET /tokens/activity/v5 (fallback cuando /sales no devuelve nada) ---

// activityResponse es la respuesta de GET /tokens/activity/v5.
type activityResponse struct {
	Activities []rawActivity `json:"activities"`
}

// rawActivity es un evento de actividad; solo nos interesan los type=sale.
type rawActivity struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Contract  string      `json:"contract"`
	Price     rawPrice    `json:"price"`
	Timestamp json.Number `json:"timestamp"`
	Token     struct {
		TokenID    string `json:"tokenId"`
		TokenName  string `json:"tokenName"`
		TokenImage string `json:"tokenImage"`
	} `json:"token"`
}

// --- GET /tokens/v6 (lookup de imagen) ---

// tokensResponse es la respuesta de GET /tokens/v6.
type tokensResponse struct {
	Tokens []struct {
		Token struct {
			TokenID string `json:"tokenId"`
			Image   string `json:"image"`
		} `json:"token"`
	} `json:"tokens"`
}

// --- OpenSea fallback ---

// openseaNFTResponse es la respuesta de GET /api/v2/chain/base/contract/{c}/nfts/{id}.
type openseaNFTResponse struct {
	NFT struct {
		ImageURL string `json:"image_url"`
	} `json:"nft"`
}
