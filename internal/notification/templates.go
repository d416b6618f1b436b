package notification

import (
	"fmt"
	"strings"
	"time"

	"agencyhub/internal/model"
)

var bulan = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatTanggal renders t as "02 Januari 2006 15:04" in WIB.
func FormatTanggal(t time.Time) string {
	t = t.In(model.WIB)
	return fmt.Sprintf("%02d %s %d %02d:%02d", t.Day(), bulan[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// BusinessMessage is the new-lead alert sent to the agency.
func BusinessMessage(lead model.Lead) string {
	var b strings.Builder
	b.WriteString("📥 *New Lead Alert*\n\n")
	fmt.Fprintf(&b, "*Nama:* %s\n", lead.Name)
	fmt.Fprintf(&b, "*Alamat:* %s\n", lead.Address)
	fmt.Fprintf(&b, "*Jenis Layanan:* %s\n", lead.ServiceType.Label())
	if lead.ShortID != "" {
		fmt.Fprintf(&b, "*Kode:* %s\n", lead.ShortID)
	}
	writeOptional(&b, "No. HP", lead.PhoneNumber)
	writeOptional(&b, "Deskripsi Project", lead.ProjectDescription)
	writeOptional(&b, "Fitur-fitur", lead.Features)
	writeOptional(&b, "Anggaran", lead.Budget)
	fmt.Fprintf(&b, "\n_Tanggal: %s_", FormatTanggal(lead.SubmittedAt))
	return b.String()
}

func writeOptional(b *strings.Builder, label string, v *string) {
	if v == nil || *v == "" {
		return
	}
	fmt.Fprintf(b, "*%s:* %s\n", label, *v)
}

// ClientMessage confirms receipt to the lead. The short id doubles as the
// request number for the public progress page.
func ClientMessage(lead model.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Terima kasih %s, permintaan Anda telah kami terima!\n\n", lead.Name)
	fmt.Fprintf(&b, "Kami telah menerima permintaan Anda untuk layanan %s.\n", lead.ServiceType.Label())
	b.WriteString("Tim kami akan segera menghubungi Anda kembali.\n\n")
	b.WriteString("Status permintaan Anda: *Come in (0%)*\n")
	fmt.Fprintf(&b, "Nomor permintaan Anda: *%s*", lead.ShortID)
	return b.String()
}

// StatusChangeMessage tells the client their project moved between states.
func StatusChangeMessage(project model.Project, from, to model.ProjectStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s,\n\n", project.ClientName)
	fmt.Fprintf(&b, "Status project %s telah diperbarui dari %s ke %s.\n", project.ProjectName, from, to)
	fmt.Fprintf(&b, "Progress saat ini: *%d%%*\n", to.Progress())
	if project.ShortID != "" {
		fmt.Fprintf(&b, "Kode project Anda: *%s*", project.ShortID)
	}
	return strings.TrimRight(b.String(), "\n")
}
