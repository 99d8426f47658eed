package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/heartview/spark-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/kakao/callback", handlers.KakaoCallback)

	// Coaching chat
	r.Post("/api/chat", handlers.SendMessage)
	r.Get("/api/chat/history", handlers.GetChatHistory)
	r.Get("/ws/chat", handlers.ChatWebSocket)

	// Challenges
	r.Get("/api/challenges", handlers.GetChallenges)
	r.Post("/api/challenges/confirm", handlers.ConfirmChallenge)
	r.Delete("/api/challenges/pending", handlers.DismissChallenge)
	r.Put("/api/challenges/toggle", handlers.ToggleChallenge)
	r.Put("/api/challenges/skip", handlers.SkipChallenge)
	r.Delete("/api/challenges", handlers.DeleteChallenge)

	// Profile
	r.Post("/api/profile/avatar", handlers.UploadAvatar)
}
