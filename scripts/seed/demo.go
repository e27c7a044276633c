package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/db"
	"github.com/sunflowerskg/internal/storage"
	"gorm.io/gorm"
)

// 演示数据：咨询条数超过一页，便于在控制台里翻页
const demoInquiryCount = 15

var demoParents = []string{"Amal Haddad", "Ben Carter", "Chen Yu", "Dana Novak", "Elif Kaya"}

var demoGallery = []struct {
	title string
	fill  color.RGBA
}{
	{"Art workstation", color.RGBA{R: 246, G: 190, B: 0, A: 255}},
	{"Science corner", color.RGBA{R: 64, G: 160, B: 110, A: 255}},
	{"Reading nook", color.RGBA{R: 90, G: 120, B: 200, A: 255}},
}

// seedDemo 写入演示用的咨询和图库图片；表中已有数据时跳过对应部分。
func seedDemo(gdb *gorm.DB, files *storage.FileStore, log logrus.FieldLogger) error {
	var count int64
	if err := gdb.Model(&db.Inquiry{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		items := make([]db.Inquiry, 0, demoInquiryCount)
		for i := 0; i < demoInquiryCount; i++ {
			parent := demoParents[i%len(demoParents)]
			items = append(items, db.Inquiry{
				ParentName:     parent,
				ChildAge:       2 + i%4,
				Email:          fmt.Sprintf("parent%02d@example.com", i+1),
				InquiryMessage: fmt.Sprintf("Hello, I would like to know more about enrolment for my child (%d).", i+1),
			})
		}
		if err := gdb.Create(&items).Error; err != nil {
			return err
		}
		log.WithField("count", len(items)).Info("演示咨询已写入")
	} else {
		log.Info("咨询已存在，跳过演示咨询")
	}

	if err := gdb.Model(&db.GalleryImage{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("图库已存在，跳过演示图片")
		return nil
	}

	for i, item := range demoGallery {
		data, err := placeholderPNG(320, 240, item.fill)
		if err != nil {
			return err
		}
		stored, err := files.Save(fmt.Sprintf("demo-%d.png", i+1), "image/png", int64(len(data)), bytes.NewReader(data))
		if err != nil {
			return err
		}
		record := db.GalleryImage{
			Title:       item.title,
			ImageURL:    stored.URL,
			ImageWidth:  stored.Width,
			ImageHeight: stored.Height,
			IsActive:    true,
			SortOrder:   i + 1,
		}
		if err := gdb.Create(&record).Error; err != nil {
			files.Remove(stored.URL)
			return err
		}
	}
	log.WithField("count", len(demoGallery)).Info("演示图片已写入")
	return nil
}

func placeholderPNG(width, height int, fill color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
