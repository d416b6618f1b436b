package complexity

import (
	"fmt"
	"strings"
	"time"
)

// Request is the intake form data the reply is written for.
type Request struct {
	Name               string `json:"name"`
	ServiceType        string `json:"service_type"`
	ProjectDescription string `json:"project_description"`
	Features           string `json:"features"`
	Budget             string `json:"budget"`
}

// FallbackReply is returned when the request cannot be analysed.
const FallbackReply = `Halo! Terima kasih telah mengirimkan formulir permintaan Anda.

Saat ini sistem analisis kami sedang dalam perawatan. Tim kami akan segera menghubungi Anda untuk membantu dengan permintaan proyek Anda.

Silakan hubungi kami langsung jika Anda memiliki pertanyaan lebih lanjut.`

// Greeting picks the Indonesian salutation for the hour of now.
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 18:
		return "Selamat malam"
	case h >= 15:
		return "Selamat sore"
	case h >= 12:
		return "Selamat siang"
	}
	return "Selamat pagi"
}

// Compose renders the full reply. Output depends only on its arguments.
func Compose(req Request, a Assessment, now time.Time) string {
	features := strings.TrimSpace(req.Features)
	description := strings.TrimSpace(req.ProjectDescription)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s! Terima kasih telah mempercayakan rencana proyek Anda kepada kami. Saya telah menganalisis detail yang Anda berikan dan berikut temuan menariknya:\n\n", Greeting(now), req.Name)

	fmt.Fprintf(&b, "**Jenis Proyek Anda:** %s\n\n", projectKind(req.ServiceType))
	fmt.Fprintf(&b, "**Gambaran Proyek:** \n%s\n\n", insight(req.ServiceType, features, a.Score))
	fmt.Fprintf(&b, "**Deskripsi Lengkap:** \n%s\n\n", description)
	fmt.Fprintf(&b, "**Fitur-fitur yang Anda Inginkan:** \n%s\n\n", features)
	fmt.Fprintf(&b, "**Wawasan Mendalam:**\n%s\n\n", specifics(features))

	label := a.Tier.Label()
	fmt.Fprintf(&b, "Kategori kompleksitas: %s - Artinya ini adalah proyek yang %s untuk dikembangkan, dengan tingkat teknis %s, sangat tergantung pada fitur-fitur spesifik yang Anda minta.\n\n",
		label, tone(a.Tier), technicalLevel(a.Tier))

	fmt.Fprintf(&b, "**Perkiraan Waktu Pengerjaan:** %s\n\n", a.Timeline)

	fmt.Fprintf(&b, "**Rincian Investasi:**\nBerdasarkan kompleksitas dan anggaran yang Anda nyatakan (%s), saya merekomendasikan investasi sekitar %s. Ini mencakup:\n", FormatBudget(req.Budget), a.Estimate)
	b.WriteString("- Perencanaan strategis dan desain awal\n")
	b.WriteString("- Pengembangan dan integrasi fitur\n")
	b.WriteString("- Quality assurance dan pengujian\n")
	b.WriteString("- Deployment serta dokumentasi awal\n\n")

	b.WriteString("**Saran Khusus untuk Kesuksesan Proyek:**\n")
	for i, rec := range Recommendations(a.Tier, req.Budget) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\n")

	if a.Tier != TierLow {
		b.WriteString("Proyek dengan kompleksitas ini akan sangat diuntungkan dengan diskusi awal untuk menyusun roadmap pengembangan yang efisien dan fokus pada fitur-fitur prioritas.\n\n")
	} else {
		b.WriteString("Ini adalah proyek yang bisa segera diwujudkan setelah sedikit penyesuaian spesifikasi sesuai kebutuhan Anda yang spesifik.\n\n")
	}

	if a.Score%2 == 0 {
		b.WriteString("Kami antusias untuk membantu mewujudkan ide Anda menjadi kenyataan!\n\n")
	} else {
		b.WriteString("Tim kami siap membantu Anda dalam setiap langkah pengembangan proyek ini.\n\n")
	}

	b.WriteString("Silakan hubungi kami kapan pun jika ingin membahas lebih lanjut atau menyesuaikan rencana proyek Anda.")
	return b.String()
}

// Recommendations lists the advice lines for a tier and budget.
func Recommendations(tier Tier, budget string) []string {
	var recs []string
	switch tier {
	case TierLow:
		recs = append(recs, "Proyek ini ideal untuk dimulai dengan cepat. Kami bisa mengembangkan MVP (Minimum Viable Product) dalam waktu singkat.")
	case TierMedium:
		recs = append(recs, "Proyek ini membutuhkan perencanaan dan pengembangan bertahap. Kami menyarankan pendekatan agile untuk memastikan kualitas dan fleksibilitas.")
	default:
		recs = append(recs, "Proyek ini kompleks dan akan membutuhkan tim pengembang yang berpengalaman. Kami merekomendasikan pendekatan modular untuk manajemen yang lebih baik.")
	}

	switch {
	case budget == BudgetLessThan5 && tier != TierLow:
		recs = append(recs, "Anggaran Anda mungkin terbatas untuk kompleksitas proyek ini. Kami bisa membantu menyusun fitur prioritas (MVP) untuk tetap berada di anggaran.")
	case budget != BudgetNotSure && tier == TierHigh && budget != BudgetMoreThan50:
		recs = append(recs, "Dengan kompleksitas tinggi, anggaran yang lebih besar akan memungkinkan implementasi yang lebih lengkap dan kualitas yang lebih baik.")
	}
	return recs
}

func projectKind(serviceType string) string {
	switch serviceType {
	case "website":
		return "Pembuatan Website"
	case "aplikasi":
		return "Pengembangan Aplikasi"
	}
	return "Desain UI/UX"
}

func insight(serviceType, features string, score int) string {
	typeDesc := "desain UI/UX"
	solution := "dengan fokus desain"
	target := "antarmuka pengguna"
	switch serviceType {
	case "website":
		typeDesc, solution, target = "website", "berbasis web", "website responsif"
	case "aplikasi":
		typeDesc, solution, target = "aplikasi mobile/web", "mobile atau web", "aplikasi mobile"
	}

	focus := "kebutuhan spesifik Anda"
	if features != "" {
		parts := strings.Split(features, ",")
		if len(parts) > 2 {
			parts = parts[:2]
		}
		focus = strings.Join(parts, " dan ")
	}

	insights := []string{
		fmt.Sprintf("Proyek %s dengan fokus pada %s", typeDesc, focus),
		fmt.Sprintf("Solusi digital %s yang dirancang untuk mencapai tujuan bisnis Anda", solution),
		fmt.Sprintf("Implementasi teknologi modern untuk %s yang efektif", target),
	}
	return insights[score%len(insights)]
}

func specifics(features string) string {
	f := strings.ToLower(features)
	var found []string
	if strings.Contains(f, "login") || strings.Contains(f, "register") {
		found = append(found, "otentikasi pengguna")
	}
	if strings.Contains(f, "payment") || strings.Contains(f, "pembayaran") {
		found = append(found, "sistem pembayaran")
	}
	if strings.Contains(f, "admin") || strings.Contains(f, "dashboard") {
		found = append(found, "panel admin/dashboard")
	}
	if strings.Contains(f, "notifikasi") || strings.Contains(f, "notification") {
		found = append(found, "sistem notifikasi")
	}
	if len(found) == 0 {
		return "Berdasarkan deskripsi Anda, proyek ini akan mencakup pengembangan standar sesuai kebutuhan."
	}
	return "Fitur spesifik yang akan dibangun: " + strings.Join(found, ", ") + "."
}

func tone(t Tier) string {
	switch t {
	case TierLow:
		return "menyenangkan"
	case TierMedium:
		return "menantang, tapi layak"
	}
	return "besar dan menarik"
}

func technicalLevel(t Tier) string {
	switch t {
	case TierLow:
		return "dasar"
	case TierMedium:
		return "menengah"
	}
	return "tinggi"
}
