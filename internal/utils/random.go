package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣", "悦",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleEmployee,
	domain.RoleHRAdmin,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

// GenerateEmailPrefixFromChineseName 把中文姓名转成拼音再拼上随机数字，
// 作为随机生成的员工的邮箱前缀
func GenerateEmailPrefixFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	prefix := ""

	for _, py := range pinyinArray {
		prefix += py
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		prefix += string(digits[rand.Intn(len(digits))])
	}

	return prefix
}

func GenerateRandomEmployeeID() string {
	return fmt.Sprintf("E%06d", rand.Intn(1000000))
}

var departments = []string{"技术部", "人事部", "市场部", "财务部", "行政部"}

func GenerateRandomDepartment() string {
	return departments[rand.Intn(len(departments))]
}

// GenerateRandomUser 生成一个随机的员工账户，只用于开发环境的数据填充
func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	emailPrefix := GenerateEmailPrefixFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		EmployeeID:   GenerateRandomEmployeeID(),
		FullName:     fullName,
		Email:        emailPrefix + "@" + emailDomainName,
		Department:   GenerateRandomDepartment(),
		PasswordHash: string(passwordHash),
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var trainingTitles = []string{
	"新员工入职培训", "信息安全意识培训", "项目管理实战", "沟通技巧进阶", "职业素养提升",
}
var platforms = []string{"腾讯会议", "钉钉", "飞书"}
var locations = []string{"三楼会议室", "培训中心 A 区", "行政楼报告厅"}

// GenerateRandomTraining 生成一个随机的培训项目，只用于开发环境的数据填充
func GenerateRandomTraining() *domain.Training {
	t := &domain.Training{
		Title:       trainingTitles[rand.Intn(len(trainingTitles))] + GenerateRandomID(0, 3),
		Description: "培训描述" + GenerateRandomID(10, 5),
		StartDate:   time.Now().Add(time.Duration(rand.Intn(30)+1) * 24 * time.Hour),
	}
	t.EndDate = t.StartDate.Add(time.Duration(rand.Intn(5)+1) * 24 * time.Hour)

	if rand.Intn(2) == 0 {
		t.Mode = domain.TrainingModeOnline
		t.Platform = platforms[rand.Intn(len(platforms))]
	} else {
		t.Mode = domain.TrainingModeOffline
		t.Location = locations[rand.Intn(len(locations))]
	}

	return t
}
