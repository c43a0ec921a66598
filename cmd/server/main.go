package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/reteach/backend/internal/analysis"
	"github.com/reteach/backend/internal/config"
	"github.com/reteach/backend/internal/database"
	"github.com/reteach/backend/internal/email"
	"github.com/reteach/backend/internal/forms"
	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/questions"
	"github.com/reteach/backend/internal/resources"
	"github.com/reteach/backend/internal/studyplan"
	"github.com/reteach/backend/internal/textbook"
	"github.com/reteach/backend/internal/topics"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Generation cache: Redis when configured, otherwise on-disk.
	var cache llm.Cache
	if cfg.RedisURL != "" {
		redisCache, err := llm.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cache = redisCache
		log.Println("[main] using Redis generation cache")
	} else {
		fileCache, err := llm.NewFileCache(cfg.CacheDir)
		if err != nil {
			log.Fatalf("Failed to create cache dir: %v", err)
		}
		cache = fileCache
		log.Printf("[main] using file generation cache at %s", cfg.CacheDir)
	}

	client, model := llm.NewClientFromEnv()
	svc := llm.NewService(client, cache, model)

	var notifier email.Notifier
	if cfg.SMTPHost != "" && cfg.BotEmail != "" {
		smtp := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.BotEmail, cfg.BotPassword)
		if err := smtp.Verify(); err != nil {
			log.Printf("WARN: [main] SMTP verification failed, emails may not send: %v", err)
		}
		notifier = smtp
	} else {
		log.Println("WARN: [main] SMTP not configured, result emails disabled")
	}

	finder := resources.NewFinder(svc)
	gapCfg := analysis.Config{Threshold: cfg.GapThreshold}

	bookStore := textbook.NewStore(db)
	topicStore := topics.NewStore(db)

	topicsHandler := topics.NewHandler(topics.NewParser(svc), topicStore)
	questionsHandler := questions.NewHandler(questions.NewGenerator(svc), questions.NewStore(db), bookStore, topicStore)
	textbookHandler := textbook.NewHandler(bookStore, textbook.NewSectionMapper(svc))
	planStore := studyplan.NewStore(db)
	planHandler := studyplan.NewHandler(planStore)
	formsHandler := forms.NewHandler(
		forms.NewStore(db),
		planStore,
		finder,
		notifier,
		gapCfg,
		cfg.BaseURL,
	)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/topics/parse", topicsHandler.ParseTopics).Methods("POST")
	api.HandleFunc("/courses/{courseID}/topics", topicsHandler.ListTopics).Methods("GET")
	api.HandleFunc("/questions/generate", questionsHandler.GenerateQuestions).Methods("POST")
	api.HandleFunc("/courses/{courseID}/questions", questionsHandler.ListQuestions).Methods("GET")
	api.HandleFunc("/surveys/generate", questionsHandler.GenerateSurvey).Methods("POST")
	api.HandleFunc("/textbooks", textbookHandler.Upload).Methods("POST")
	api.HandleFunc("/textbooks/extract-text", textbookHandler.ExtractTextFromPDF).Methods("POST")
	api.HandleFunc("/textbooks/map", textbookHandler.MapTopics).Methods("POST")
	api.HandleFunc("/textbooks/{id}", textbookHandler.GetTextbook).Methods("GET")
	api.HandleFunc("/forms", formsHandler.CreateForm).Methods("POST")
	api.HandleFunc("/forms/{slug}", formsHandler.GetForm).Methods("GET")
	api.HandleFunc("/forms/{slug}/submit", formsHandler.SubmitForm).Methods("POST")
	api.HandleFunc("/forms/{slug}/submissions", formsHandler.ListSubmissions).Methods("GET")
	api.HandleFunc("/study-plans", planHandler.ListPlans).Methods("GET")
	api.HandleFunc("/study-plans/{id}", planHandler.GetPlan).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s (model %s)", cfg.Port, model)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
