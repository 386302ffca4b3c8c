//nolint:mnd
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"wfconsole/internal/entity"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-resty/resty/v2"
)

// checkout-sim walks a full customer flow against a running console-service:
// quote, OTP send and verify (needs demo mode on the target), then checkout.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "console-service base URL")
	count := flag.Int("count", 1, "Number of checkout flows to run")
	interval := flag.Duration("interval", 1*time.Second, "Interval between flows")

	flag.Parse()

	client := resty.New().
		SetBaseURL(*baseURL + "/api/v1").
		SetTimeout(30 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("Starting checkout simulator. Will run %d flows against '%s' every %v\n",
		*count, *baseURL, *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	flowsRun := 0

	runFlow(ctx, client)

	flowsRun++
	if flowsRun >= *count {
		log.Printf("Ran all %d flows. Exiting.\n", *count)
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down simulator...")
			return
		case <-ticker.C:
			runFlow(ctx, client)
			flowsRun++
			if flowsRun >= *count {
				log.Printf("Ran all %d flows. Exiting.\n", *count)
				return
			}
		}
	}
}

func runFlow(ctx context.Context, client *resty.Client) {
	plan := generateFakePlan()
	customer := generateFakeCustomer()

	var quote struct {
		Total string `json:"total"`
	}
	resp, err := client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"price_per_unit":   plan.PricePerUser,
			"quantity":         plan.UserCount,
			"discount_percent": plan.DiscountPercent,
		}).
		SetResult(&quote).
		Post("/pricing/quote")
	if err != nil || resp.IsError() {
		log.Printf("Quote failed: err=%v status=%s", err, resp.Status())
		return
	}
	log.Printf("Quoted %s plan for %d users: total %s", plan.Name, plan.UserCount, quote.Total)

	localNumber := gofakeit.Numerify("98########")

	var sent entity.OTPResult
	resp, err = client.R().
		SetContext(ctx).
		SetBody(map[string]string{"local_number": localNumber, "country_code": "91"}).
		SetResult(&sent).
		Post("/otp/send")
	if err != nil || resp.IsError() {
		log.Printf("OTP send failed: err=%v status=%s", err, resp.Status())
		return
	}
	if sent.DemoCode == "" {
		log.Printf("Target is not in demo mode, cannot read back the code. Skipping verify.")
	} else {
		var verified entity.OTPResult
		resp, err = client.R().
			SetContext(ctx).
			SetBody(map[string]string{
				"local_number": localNumber,
				"country_code": "91",
				"code":         sent.DemoCode,
			}).
			SetResult(&verified).
			Post("/otp/verify")
		if err != nil || resp.IsError() {
			log.Printf("OTP verify failed: err=%v status=%s", err, resp.Status())
			return
		}
		log.Printf("OTP verify: success=%v message=%q", verified.Success, verified.Message)
	}

	var form entity.PaymentForm
	resp, err = client.R().
		SetContext(ctx).
		SetBody(entity.CheckoutRequest{
			Plan:        *plan,
			Customer:    *customer,
			TermsAgreed: true,
		}).
		SetResult(&form).
		Post("/payments/checkout")
	if err != nil || resp.IsError() {
		log.Printf("Checkout failed: err=%v status=%s body=%s", err, resp.Status(), resp.String())
		return
	}

	log.Printf("Checkout initiated: txnid=%s action=%s amount=%s",
		form.TxnID, form.Action, form.Fields["amount"])
}

func generateFakePlan() *entity.Plan {
	return &entity.Plan{
		Name:            gofakeit.RandomString([]string{"Starter", "Team", "Business", "Enterprise"}),
		PricePerUser:    gofakeit.Price(49, 499),
		UserCount:       gofakeit.Number(1, 500),
		DiscountPercent: float64(gofakeit.Number(0, 25)),
	}
}

func generateFakeCustomer() *entity.Customer {
	return &entity.Customer{
		UserID:    gofakeit.UUID(),
		FirstName: gofakeit.FirstName(),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Numerify("+919#########"),
	}
}
