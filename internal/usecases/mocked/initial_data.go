// Package mocked holds the static catalog the stores are seeded with.
package mocked

import (
	"fmt"
	"time"

	"go.openly.dev/pointy"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

// AdminUserID is the id of the seeded admin panel account.
const AdminUserID = "100"

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(fmt.Sprintf("mocked: bad date %q: %v", value, err))
	}
	return t
}

func avatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + name + "&background=random"
}

// InitialUsers returns the seed users. adminPasswordHash is the bcrypt hash of
// the admin panel password.
func InitialUsers(adminUsername, adminPasswordHash string) []entities.User {
	return []entities.User{
		{
			ID: AdminUserID, Name: "Administrator", Username: adminUsername, Avatar: avatar("Admin"),
			Role: entities.RoleAdmin, Status: entities.UserStatusActive, Badges: []string{"Admin"},
			JoinDate: day("2023-09-01"), PasswordHash: adminPasswordHash,
		},
		{
			ID: "101", Name: "Ahmet Yılmaz", Username: "ahmety", Avatar: avatar("Ahmet+Yilmaz"),
			Role: entities.RoleUser, Status: entities.UserStatusActive, Badges: []string{entities.BadgePremium},
			JoinDate: day("2023-11-10"), Email: pointy.String("ahmet@example.com"), CanPublishAds: true,
		},
		{
			ID: "102", Name: "Ayşe Demir", Username: "aysed", Avatar: avatar("Ayse+Demir"),
			Role: entities.RoleModerator, Status: entities.UserStatusActive, Badges: []string{"Mod"},
			JoinDate: day("2023-10-05"), Email: pointy.String("ayse@example.com"),
		},
		{
			ID: "103", Name: "Mehmet Öztürk", Username: "mehmeto", Avatar: avatar("Mehmet+Ozturk"),
			Role: entities.RoleUser, Status: entities.UserStatusPassive, Badges: []string{},
			JoinDate: day("2023-12-01"), Email: pointy.String("mehmet@example.com"),
		},
		{
			ID: "104", Name: "Canan Can", Username: "cananc", Avatar: avatar("Canan+Can"),
			Role: entities.RoleUser, Status: entities.UserStatusActive, Badges: []string{"Reklamcı"},
			JoinDate: day("2024-01-15"), Email: pointy.String("canan@example.com"), CanPublishAds: true,
		},
	}
}

type botSeed struct {
	id, name, description, seed, category string
	price                                 float64
	isNew, isPremium                      bool
}

var botSeeds = []botSeed{
	{"1", "Task Master", "Görevleri yönetin", "task", "productivity", 29.99, true, true},
	{"2", "GameBot Pro", "Oyun sunucusu yönetimi", "game", "games", 0, false, false},
	{"3", "CryptoAlert", "Anlık fiyat takibi", "crypto", "utilities", 99.99, false, true},
	{"4", "ModBot", "Otomatik moderasyon", "mod", "moderation", 49.50, false, true},
	{"5", "MusicFy", "Yüksek kaliteli müzik", "music", "music", 19.99, false, false},
	{"6", "NotionSync", "Notion entegrasyonu", "notion", "productivity", 35.00, false, true},
	{"7", "FocusFlow", "Pomodoro zamanlayıcı", "focus", "productivity", 0, false, false},
	{"8", "RPG Master", "Rol yapma oyunu", "rpg", "games", 15.00, false, false},
	{"9", "QuizKing", "Bilgi yarışması botu", "quiz", "games", 0, false, false},
	{"10", "StockBot", "Borsa takibi", "stock", "finance", 120.00, false, true},
}

// InitialBots returns the seed marketplace catalog. Creation dates are spread
// one day apart so the catalog keeps its order when sorted newest first.
func InitialBots() []entities.Bot {
	base := day("2024-03-01")

	bots := make([]entities.Bot, 0, len(botSeeds))
	for i, s := range botSeeds {
		bots = append(bots, entities.Bot{
			ID:          s.id,
			Name:        s.name,
			Description: s.description,
			Icon:        "https://picsum.photos/seed/" + s.seed + "/200",
			Price:       s.price,
			Category:    s.category,
			IsNew:       s.isNew,
			IsPremium:   s.isPremium,
			Status:      entities.BotStatusActive,
			Features:    []string{},
			Screenshots: []string{},
			CreatedAt:   base.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}
	return bots
}
