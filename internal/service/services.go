package service

// Services groups every business service so router and handler setup
// pass around a single value.
type Services struct {
	Calculator *CalculatorService
}

func NewService() (*Services, error) {
	return &Services{
		Calculator: NewCalculatorService(),
	}, nil
}
