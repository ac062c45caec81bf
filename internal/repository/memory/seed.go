package memory

import "github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"

// Demo is the fixed cast seeded by SeedDemo.
type Demo struct {
	Student    domain.User
	Employer   domain.User
	Manager    domain.User
	Instructor domain.User
	Offer      domain.Offer
	CV         domain.CV
}

// SeedDemo loads one of each party, a published offer and an approved CV,
// enough to walk a placement from application to evaluation.
func SeedDemo(s *Store) Demo {
	company := "Acme Logiciels"
	d := Demo{
		Student:    s.AddUser(domain.User{ID: 1, Email: "etudiant@leandrose.local", FirstName: "Léa", LastName: "Tremblay", Role: domain.RoleStudent}),
		Employer:   s.AddUser(domain.User{ID: 2, Email: "employeur@leandrose.local", FirstName: "Marc", LastName: "Roy", Role: domain.RoleEmployer, CompanyName: &company}),
		Manager:    s.AddUser(domain.User{ID: 3, Email: "gestionnaire@leandrose.local", FirstName: "Sophie", LastName: "Gagnon", Role: domain.RoleManager}),
		Instructor: s.AddUser(domain.User{ID: 4, Email: "professeur@leandrose.local", FirstName: "Paul", LastName: "Côté", Role: domain.RoleInstructor}),
	}
	d.Offer = s.AddOffer(domain.Offer{ID: 10, EmployerID: d.Employer.ID, Title: "Développeur backend", Status: domain.OfferStatusPublished})
	d.CV = s.AddCV(domain.CV{ID: 5, StudentID: d.Student.ID, Path: "cv/lea.pdf", Status: domain.CVStatusApproved})
	return d
}
