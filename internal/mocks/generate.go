package mocks

//go:generate mockgen -destination=catalog.go -package=mocks -mock_names=Source=MockCatalogSource github.com/alanyang/prompt-hub/internal/port/catalog Source
//go:generate mockgen -destination=rating.go -package=mocks -mock_names=Repository=MockRatingRepository github.com/alanyang/prompt-hub/internal/port/rating Repository
//go:generate mockgen -destination=kv.go -package=mocks -mock_names=Store=MockKVStore github.com/alanyang/prompt-hub/internal/port/kv Store
//go:generate mockgen -destination=cache.go -package=mocks -mock_names=Cache=MockCache github.com/alanyang/prompt-hub/internal/port/cache Cache
//go:generate mockgen -destination=gist.go -package=mocks -mock_names=Client=MockGistClient github.com/alanyang/prompt-hub/internal/port/gist Client
//go:generate mockgen -destination=search.go -package=mocks -mock_names=Index=MockSearchIndex github.com/alanyang/prompt-hub/internal/port/search Index
//go:generate mockgen -destination=eventbus.go -package=mocks -mock_names=EventBus=MockEventBus github.com/alanyang/prompt-hub/internal/port/eventbus EventBus
//go:generate mockgen -destination=locker.go -package=mocks -mock_names=AdvisoryLocker=MockAdvisoryLocker github.com/alanyang/prompt-hub/internal/port/locker AdvisoryLocker
