package mocks

//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/rxtech-lab/arb-console/internal/session Store
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/arb-console/internal/notify Notifier
