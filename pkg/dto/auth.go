package dto

type ConsentURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type ExchangeCodeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type TokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}
