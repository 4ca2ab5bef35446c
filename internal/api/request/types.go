package request

// ProvisionCodesRequest is the request body for adding codes to a pool
type ProvisionCodesRequest struct {
	Codes []string `json:"codes"`
}
