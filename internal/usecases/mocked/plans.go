package mocked

import "github.com/sand/bot-marketplace/backend/internal/entities"

// SubscriptionPlans is the membership catalog. Prices are in the platform currency.
func SubscriptionPlans() []entities.SubscriptionPlan {
	return []entities.SubscriptionPlan{
		{
			ID:            "plan_starter",
			Name:          "Başlangıç",
			Price:         0,
			BillingPeriod: "Aylık",
			Description:   "Platformu keşfetmek isteyenler için.",
			Features:      []string{"5 Kanala Kadar Bağlantı", "Standart Destek", "%20 Reklam Komisyonu", "Temel Botlara Erişim"},
		},
		{
			ID:            "plan_pro",
			Name:          "Pro Üyelik",
			Price:         149.90,
			BillingPeriod: "Aylık",
			Description:   "Büyüyen topluluklar ve bot sahipleri için.",
			Features:      []string{"20 Kanala Kadar Bağlantı", "Öncelikli Destek", "%10 Reklam Komisyonu", "Premium Botlara Erişim", "Detaylı İstatistikler"},
			IsPopular:     true,
		},
		{
			ID:            "plan_elite",
			Name:          "Elite Üyelik",
			Price:         399.90,
			BillingPeriod: "Aylık",
			Description:   "Maksimum kazanç ve sınırsız özellikler.",
			Features:      []string{"Sınırsız Kanal Bağlantısı", "7/24 Canlı Destek", "%2 Reklam Komisyonu", "Tüm Botlar Ücretsiz", "Erken Erişim Özellikleri", "Onaylanmış Profil Rozeti"},
		},
	}
}
