package payment

import (
	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/auth/domain/repository"
	authusecase "pass-questions/internal/auth/usecase"
	paymenthttp "pass-questions/internal/payment/adapter/http"
	"pass-questions/internal/payment/config"
	"pass-questions/internal/payment/usecase"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// PaymentModule wires the mock checkout flow.
type PaymentModule struct {
	usecase    usecase.PaymentUsecaseInterface
	handler    *paymenthttp.PaymentHTTPHandler
	middleware *authhttp.AuthMiddleware
}

func NewPaymentModule(
	accounts repository.AccountRepository,
	auth authusecase.AuthUsecaseInterface,
	cookies *authhttp.CookieManager,
	middleware *authhttp.AuthMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *PaymentModule {
	uc := usecase.NewPaymentUsecase(accounts, auth, log)
	return &PaymentModule{
		usecase:    uc,
		handler:    paymenthttp.NewPaymentHTTPHandler(uc, cookies, cfg, log),
		middleware: middleware,
	}
}

func (pm *PaymentModule) RegisterRoutes(router fiber.Router) {
	pm.handler.RegisterRoutes(router, pm.middleware)
}
